package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cherrish/matchmaker/internal/config"
	"github.com/cherrish/matchmaker/internal/engine"
	"github.com/cherrish/matchmaker/internal/httpapi"
	"github.com/cherrish/matchmaker/internal/matching"
	"github.com/cherrish/matchmaker/internal/providers"
	"github.com/cherrish/matchmaker/internal/session"
	qdrantstore "github.com/cherrish/matchmaker/internal/vectorstore/qdrant"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	fs := flag.NewFlagSet("matchmaker", flag.ExitOnError)
	addrFlag := fs.String("addr", "", "Listen address (overrides HTTP_ADDR)")
	debugFlag := fs.Bool("debug", false, "Keep gin in debug mode")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg := config.FromEnv()
	if *addrFlag != "" {
		cfg.HTTPAddr = *addrFlag
	}
	if !*debugFlag {
		gin.SetMode(gin.ReleaseMode)
	}

	llm, model, err := providers.NewLLMClient(cfg)
	if err != nil {
		log.Fatalf("chat provider: %v", err)
	}
	if cfg.RetryLLM {
		llm = engine.NewRetryingClient(llm, engine.DefaultRetryPolicy(), func(attempt int, delay time.Duration, err error) {
			log.Printf("retrying chat call (attempt %d, waiting %v): %v", attempt, delay, err)
		})
	}

	embedder, err := providers.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("embedding provider: %v", err)
	}

	transcriber, err := providers.NewTranscriber(cfg)
	if err != nil {
		// Voice input is optional; everything else works without it.
		log.Printf("transcription disabled: %v", err)
		transcriber = nil
	}

	if cfg.QdrantURL == "" {
		log.Fatal("QDRANT_URL is required for the candidate index")
	}
	index, err := qdrantstore.New(qdrantstore.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
	})
	if err != nil {
		log.Fatalf("candidate index: %v", err)
	}
	defer index.Close()

	stages := engine.NewStages(llm, model)
	matcher := matching.New(embedder, index, cfg.MatchMinScore)
	store := session.NewStore(stages, matcher, transcriber, session.Config{
		StageTimeout: cfg.StageTimeout,
		SoftCapTurns: cfg.SoftCapTurns,
	})

	srv := httpapi.NewServer(store, cfg.AllowedOrigins)
	log.Printf("matchmaker listening on %s (model %s)", cfg.HTTPAddr, model)
	if err := srv.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
