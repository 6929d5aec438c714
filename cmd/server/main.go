package main

import (
	"fmt"
	"log"

	"github.com/chenlehua/tara-sub000/internal/config"
	"github.com/chenlehua/tara-sub000/internal/database"
	"github.com/chenlehua/tara-sub000/internal/handlers"
	"github.com/chenlehua/tara-sub000/internal/pipeline"
	"github.com/chenlehua/tara-sub000/internal/pipeline/remote"
	"github.com/chenlehua/tara-sub000/internal/server"
	"github.com/chenlehua/tara-sub000/internal/tara"
)

func main() {
	cfg := config.Load()
	database.Init(cfg.DBDSN)

	rules, err := tara.NewRuleEngine()
	if err != nil {
		log.Fatalf("failed to load threat rules: %v", err)
	}

	// внешние сервисы конвейера; ненастроенный сервис = nil,
	// этап работает на локальной реализации
	collab := pipeline.Collaborators{
		Measures: database.NewCatalogReader(database.DB),
	}
	if cfg.ParserURL != "" {
		collab.Parser = remote.NewParserClient(cfg.ParserURL)
	}
	if cfg.OpenAIKey != "" {
		llm := remote.NewLLMAnalyzer(cfg.OpenAIKey, cfg.OpenAIModel)
		collab.Assets = llm
		collab.Threats = llm
		collab.Risks = llm
	} else {
		log.Println("OPENAI_API_KEY not set, analysis stages will run on local fallbacks")
	}

	fallback := pipeline.NewFallbackEngine(rules)
	executor := pipeline.NewStageExecutor(collab, fallback, cfg.AnalyzerTimeout)
	coordinator := pipeline.NewCoordinator(
		pipeline.NewMemoryStore(cfg.TaskTTL),
		executor,
		database.NewReportSink(database.DB),
	)
	handlers.InitGenerator(coordinator)

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
