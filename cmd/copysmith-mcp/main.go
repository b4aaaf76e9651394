// copysmith-mcp is a standalone MCP server for the copysmith engine. It
// connects directly to copysmith's SQLite database, serving generation,
// calendar, and history tools over JSON-RPC stdio.
package main

import (
	"flag"
	"log"

	copysmith "github.com/matthewjhunter/copysmith"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := storage.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
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
		log.Fatalf("create copysmith engine: %v", err)
	}
	defer engine.Close()

	if cfg.Embeddings.Model != "" {
		if err := engine.UseEmbedder(cfg.Embeddings.BaseURL, cfg.Embeddings.Model); err != nil {
			log.Printf("embeddings disabled: %v", err)
		}
	}

	srv := newServer(engine)
	if err := srv.run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
