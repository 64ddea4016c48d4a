package main

import (
	"context"
	"net/http"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"
	"github.com/pitabwire/frame/datastore"
	"github.com/pitabwire/util"

	appconfig "github.com/antinvestor/blueprint/apps/studio/config"
	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
	"github.com/antinvestor/blueprint/apps/studio/service/generation"
	"github.com/antinvestor/blueprint/apps/studio/service/handlers"
	"github.com/antinvestor/blueprint/apps/studio/service/profiles"
	"github.com/antinvestor/blueprint/apps/studio/service/render"
	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/llm"
)

func main() {
	ctx := context.Background()

	// Initialize configuration
	cfg, err := config.LoadWithOIDC[appconfig.StudioConfig](ctx)
	if err != nil {
		util.Log(ctx).With("err", err).Error("could not process configs")
		return
	}

	if cfg.Name() == "" {
		cfg.ServiceName = "profile_studio"
	}

	// Create service with Frame
	ctx, svc := frame.NewServiceWithContext(
		ctx,
		frame.WithConfig(&cfg),
		frame.WithDatastore(),
	)
	defer svc.Stop(ctx)
	log := svc.Log(ctx)

	dbManager := svc.DatastoreManager()

	// Handle database migration
	if handleDatabaseMigration(ctx, dbManager, cfg) {
		return
	}

	// Get database pool
	dbPool := dbManager.GetPool(ctx, datastore.DefaultPoolName)

	// ==========================================================================
	// Setup Repositories
	// ==========================================================================

	categoryRepo := repository.NewCategoryRepository(ctx, dbPool)
	stackRepo := repository.NewTechStackRepository(ctx, dbPool)
	patternRepo := repository.NewPatternRepository(ctx, dbPool)
	ruleRepo := repository.NewRuleRepository(ctx, dbPool)
	profileRepo := repository.NewProfileRepository(ctx, dbPool)
	responseRepo := repository.NewAIResponseRepository(ctx, dbPool)

	// ==========================================================================
	// Setup Services
	// ==========================================================================

	aiClient, err := setupAIClient(&cfg)
	if err != nil {
		log.WithError(err).Fatal("could not create AI client")
	}

	categoryService := catalog.NewCategoryService(categoryRepo, stackRepo)
	stackService := catalog.NewTechStackService(categoryRepo, stackRepo, profileRepo)
	patternService := catalog.NewPatternService(patternRepo, profileRepo)
	ruleService := catalog.NewRuleService(ruleRepo, profileRepo)
	profileService := profiles.NewProfileService(
		profileRepo, categoryRepo, stackRepo, patternRepo, ruleRepo,
	)

	orchestrator, err := generation.NewOrchestrator(
		aiClient, categoryRepo, stackRepo, responseRepo, cfg.GenerationMaxCount,
	)
	if err != nil {
		log.WithError(err).Fatal("could not create generation orchestrator")
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		log.WithError(err).Fatal("could not create artifact renderer")
	}

	// ==========================================================================
	// HTTP Routes
	// ==========================================================================

	mux := handlers.NewRouter(handlers.Services{
		Categories:   categoryService,
		TechStacks:   stackService,
		Patterns:     patternService,
		Rules:        ruleService,
		Profiles:     profileService,
		Orchestrator: orchestrator,
		Provider:     aiClient,
		Renderer:     renderer,
		ArtifactDir:  cfg.ArtifactOutputDir,
	})

	// Health check endpoints
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"studio"}`))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"studio"}`))
	})

	// ==========================================================================
	// Initialize Service
	// ==========================================================================

	serviceOptions := []frame.Option{
		frame.WithHTTPHandler(mux),
	}

	svc.Init(ctx, serviceOptions...)

	// ==========================================================================
	// Start the Service
	// ==========================================================================

	log.Info("Starting profile studio service...")
	err = svc.Run(ctx, "")
	if err != nil {
		log.WithError(err).Fatal("could not run server")
	}
}

func handleDatabaseMigration(
	ctx context.Context,
	dbManager datastore.Manager,
	cfg appconfig.StudioConfig,
) bool {
	if cfg.DoDatabaseMigrate() {
		dbPool := dbManager.GetPool(ctx, datastore.DefaultPoolName)
		err := repository.Migrate(ctx, dbPool)
		if err != nil {
			util.Log(ctx).WithError(err).Fatal("could not migrate")
		}
		return true
	}
	return false
}

func setupAIClient(cfg *appconfig.StudioConfig) (llm.Client, error) {
	return llm.NewClient(llm.ClientConfig{
		Provider:          llm.Provider(cfg.AIProvider),
		Model:             llm.Model(cfg.AIModel),
		AnthropicAPIKey:   cfg.AnthropicAPIKey,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		GoogleAPIKey:      cfg.GoogleAPIKey,
		TimeoutSeconds:    cfg.AITimeoutSeconds,
		MaxRetries:        cfg.AIMaxRetries,
		RetryBaseDelayMS:  cfg.AIRetryBaseDelayMS,
		MaxOutputTokens:   cfg.AIMaxOutputTokens,
		Temperature:       cfg.AITemperature,
		RequestsPerMinute: cfg.AIRequestsPerMinute,
		BurstSize:         cfg.AIBurstSize,
	})
}
