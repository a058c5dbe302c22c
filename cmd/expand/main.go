package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
	"github.com/Zynapses/radiant-graph/internal/llm"
	"github.com/Zynapses/radiant-graph/internal/server"
)

// One-shot runner: creates and runs a single expansion task, or drains the
// pending-conflict queue, then exits. Meant for cron-style invocation.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	groupID := flag.String("group", "", "tenant group id (required)")
	taskType := flag.String("task", "", "expansion task type: infer_links | cluster_entities | detect_patterns | merge_duplicates")
	resolve := flag.Bool("resolve-conflicts", false, "run a conflict resolution batch instead of an expansion task")
	cfgPath := flag.String("config", "config/config.toml", "path to config file")
	flag.Parse()

	if *groupID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if (*taskType == "") == !*resolve {
		log.Fatal("Specify exactly one of -task or -resolve-conflicts")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to construct logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Warn("could not load config file, using defaults", zap.String("path", *cfgPath), zap.Error(err))
		cfg = &config.Config{Heuristics: config.DefaultHeuristics()}
	}
	if uri := os.Getenv("MEMGRAPH_URI"); uri != "" {
		cfg.Memgraph.URI = uri
	}
	if cfg.Memgraph.URI == "" {
		cfg.Memgraph.URI = "bolt://localhost:7687"
	}

	ctx := context.Background()

	d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		logger.Fatal("failed to connect to Memgraph", zap.Error(err))
	}
	defer d.Close(ctx)

	if err := d.BuildIndices(ctx); err != nil {
		logger.Fatal("failed to build indices", zap.Error(err))
	}

	var llmClient llm.LLMClient
	if cfg.LLM.Provider != "" {
		llmClient, err = llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			logger.Fatal("failed to initialize LLM client", zap.Error(err))
		}
	}

	srv := server.New(d, llmClient, cfg, logger)

	if *resolve {
		summary, err := srv.Orchestrator.ResolveConflicts(ctx, *groupID)
		if err != nil {
			logger.Fatal("conflict batch failed", zap.Error(err))
		}
		fmt.Printf("resolved=%d escalated=%d\n", summary.Resolved, summary.Escalated)
		return
	}

	task, err := srv.Manager.CreateTask(ctx, *groupID, model.TaskType(*taskType), nil, model.ScopeGlobal)
	if err != nil {
		logger.Fatal("failed to create task", zap.Error(err))
	}
	if err := srv.Manager.RunTask(ctx, task.UUID, *groupID); err != nil {
		logger.Fatal("task failed", zap.String("task_uuid", task.UUID), zap.Error(err))
	}

	done, err := srv.Manager.GetTask(ctx, task.UUID, *groupID)
	if err != nil {
		logger.Fatal("failed to load finished task", zap.Error(err))
	}
	fmt.Printf("task=%s status=%s links=%d\n", done.UUID, done.Status, len(done.DiscoveredLinkUUIDs))
}
