package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	copysmith "github.com/matthewjhunter/copysmith"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "path to config file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	cfg, err := storage.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "copysmith-web: %v\n", err)
		os.Exit(1)
	}

	engine, err := copysmith.NewEngine(copysmith.EngineConfig{
		DBPath:        cfg.Database.Path,
		Provider:      cfg.Generator.Provider,
		Model:         cfg.Generator.Model,
		Language:      cfg.Generator.Language,
		Temperature:   cfg.Generator.Temperature,
		GeminiBaseURL: cfg.Gemini.BaseURL,
		GeminiKeyEnv:  cfg.Gemini.APIKeyEnv,
		OllamaBaseURL: cfg.Ollama.BaseURL,
		AdminsPath:    cfg.Admin.CredentialsPath,
		Limits: copysmith.Limits{
			Description:   cfg.Limits.Description,
			PageContent:   cfg.Limits.PageContent,
			Competitors:   cfg.Limits.Competitors,
			AnalysisText:  cfg.Limits.AnalysisText,
			TargetKeyword: cfg.Limits.TargetKeyword,
			AttachmentMB:  cfg.Limits.AttachmentMB,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "copysmith-web: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if cfg.Embeddings.Model != "" {
		if err := engine.UseEmbedder(cfg.Embeddings.BaseURL, cfg.Embeddings.Model); err != nil {
			log.Printf("copysmith-web: embeddings disabled: %v", err)
		}
	}

	secret := cfg.Admin.SessionSecret
	if secret == "" {
		// Ephemeral secret: sessions die with the process. Set
		// admin.session_secret to keep remember-me logins across restarts.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			fmt.Fprintf(os.Stderr, "copysmith-web: generate session secret: %v\n", err)
			os.Exit(1)
		}
		secret = hex.EncodeToString(buf)
		log.Printf("copysmith-web: using ephemeral session secret")
	}

	mux := newRouter(engine, []byte(secret))

	srv := &http.Server{
		Addr:         *addr,
		Handler:      logging(recovery(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("copysmith-web: listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("copysmith-web: %v", err)
		}
	}()

	<-done
	log.Println("copysmith-web: shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("copysmith-web: shutdown error: %v", err)
	}
	log.Println("copysmith-web: stopped")
}
