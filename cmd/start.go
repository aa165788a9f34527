package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/insightdesk/insightdesk-be/config"
	"github.com/insightdesk/insightdesk-be/database"
	"github.com/insightdesk/insightdesk-be/handler"
	"github.com/insightdesk/insightdesk-be/middleware"
	"github.com/insightdesk/insightdesk-be/repository"
	"github.com/insightdesk/insightdesk-be/service"
	"github.com/insightdesk/insightdesk-be/storage"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document library server",
	Long:  `Starts the HTTP server handling uploads, project CRUD and similarity search`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		store, err := storage.NewLocalStorage(cfg.StorageDir)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}

		// Init repositories
		projectRepo := repository.NewProjectRepo(db)
		documentRepo := repository.NewDocumentRepo(db)
		chunkRepo := repository.NewChunkRepo(db)

		// Init services
		embeddingService, err := service.NewEmbeddingService(cfg.EmbeddingConfig)
		if err != nil {
			log.Fatalf("Failed to initialize embedding client: %v", err)
		}
		chunkService := service.NewChunkService(service.DefaultChunkingConfig)
		extractService := service.NewExtractService()
		ingestService := service.NewIngestService(
			documentRepo,
			chunkRepo,
			store,
			embeddingService,
			extractService,
			chunkService,
			cfg.EmbeddingConfig.BatchSize,
		)
		searchService := service.NewSearchService(
			embeddingService,
			documentRepo,
			projectRepo,
			chunkRepo,
			cfg.SearchConfig.MatchThreshold,
			cfg.SearchConfig.DefaultLimit,
		)
		libraryService := service.NewLibraryService(projectRepo, documentRepo, chunkRepo, store)

		// Init handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(ingestService)
		searchHandler := handler.NewSearchHandler(searchService)
		documentHandler := handler.NewDocumentHandler(libraryService)
		projectHandler := handler.NewProjectHandler(libraryService)

		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		apiV1.POST("/documents/upload", uploadHandler.HandleUpload)
		apiV1.POST("/rag/search", searchHandler.HandleSearch)

		tenantRoutes := apiV1.Group("/")
		tenantRoutes.Use(middleware.TenantMiddleware)
		{
			tenantRoutes.POST("/projects", projectHandler.HandleCreateProject)
			tenantRoutes.GET("/projects", projectHandler.HandleListProjects)
			tenantRoutes.GET("/projects/:id", projectHandler.HandleGetProject)
			tenantRoutes.PUT("/projects/:id", projectHandler.HandleUpdateProject)
			tenantRoutes.DELETE("/projects/:id", projectHandler.HandleDeleteProject)
			tenantRoutes.GET("/projects/:id/documents", documentHandler.HandleListDocuments)
			tenantRoutes.GET("/documents/:id", documentHandler.HandleGetDocument)
			tenantRoutes.DELETE("/documents/:id", documentHandler.HandleDeleteDocument)
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
