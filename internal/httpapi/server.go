// Package httpapi exposes the session machine over HTTP. The surface is
// deliberately small: one action endpoint driving the state machine, plus a
// health probe.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cherrish/matchmaker/internal/session"
)

// Server wraps the gin engine around the session store.
type Server struct {
	store  *session.Store
	engine *gin.Engine
}

// NewServer builds the router. allowedOrigins may be empty, which restricts
// browsers to the local development frontend.
func NewServer(store *session.Store, allowedOrigins []string) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(corsMiddleware(allowedOrigins))

	s := &Server{store: store, engine: r}

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/matchmaker", s.handleAction)
	}

	return s
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}

	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
		},
		AllowCredentials: true,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}
