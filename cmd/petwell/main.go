package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/ai"
	"github.com/petwell/petwell/internal/config"
	"github.com/petwell/petwell/internal/db"
	"github.com/petwell/petwell/internal/embedcache"
	"github.com/petwell/petwell/internal/handler"
	"github.com/petwell/petwell/internal/job"
	"github.com/petwell/petwell/internal/middleware"
	"github.com/petwell/petwell/internal/repo"
	"github.com/petwell/petwell/internal/schedule"
	"github.com/petwell/petwell/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "petwell",
		Short: "petwell backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run petwell server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			dbConn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(dbConn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, dbConn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, dbConn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model),
	)

	docRepo := repo.NewDocumentRepo(dbConn)
	planRepo := repo.NewPlanRepo(dbConn)
	threadRepo := repo.NewThreadRepo(dbConn)
	petRepo := repo.NewPetRepo(dbConn)
	metricRepo := repo.NewMetricRepo(dbConn)
	serviceRepo := repo.NewServiceLocationRepo(dbConn)
	cacheRepo := repo.NewEmbeddingCacheRepo(dbConn)

	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	aiProvider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedder := embedcache.WrapLRU(
		embedcache.WrapDB(ai.NewEmbedder(aiProvider, cfg.AI.EmbedModel), cacheRepo),
		cfg.AI.CacheSize,
		time.Duration(cfg.AI.CacheTTLHours)*time.Hour,
	)
	manager := ai.NewManager(
		ai.NewChatModel(aiProvider, cfg.AI.Model),
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		embedder,
		ai.ManagerConfig{
			Timeout:       cfg.AI.Timeout,
			MaxInputChars: cfg.AI.MaxInputChars,
			MaxToolTurns:  cfg.AI.MaxToolTurns,
		},
	)

	retrievalService := service.NewRetrievalService(manager, docRepo, serviceRepo, cfg.Retrieval.TopK, cfg.Retrieval.ContextBudget)
	documentService := service.NewDocumentService(docRepo, manager)
	chatService := service.NewChatService(manager, threadRepo, retrievalService, petRepo)
	planService := service.NewPlanService(planRepo, metricRepo, petRepo, chatService, documentService, cfg.Plan.FreshnessDays)
	knowledgeService := service.NewKnowledgeService(ai.NewChunker(), documentService)

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(documentService, retrievalService),
		Chat:      handler.NewChatHandler(chatService),
		Plans:     handler.NewPlanHandler(planService),
		Pets:      handler.NewPetHandler(petRepo, retrievalService),
		Knowledge: handler.NewKnowledgeHandler(knowledgeService),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := schedule.NewRunner()
	if cfg.Schedule.PlanRefreshSpec != "" {
		if err := runner.Register(cfg.Schedule.PlanRefreshSpec, job.NewPlanRefreshJob(petRepo, planService)); err != nil {
			return fmt.Errorf("schedule plan refresh: %w", err)
		}
	}
	if cfg.Schedule.CacheCleanupSpec != "" {
		if err := runner.Register(cfg.Schedule.CacheCleanupSpec, job.NewCacheCleanupJob(cacheRepo, cfg.Schedule.CacheKeepDays)); err != nil {
			return fmt.Errorf("schedule cache cleanup: %w", err)
		}
	}
	runner.Start(ctx)
	defer runner.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
