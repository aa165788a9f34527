package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/insightdesk/insightdesk-be/config"
	"github.com/insightdesk/insightdesk-be/database"
	"github.com/insightdesk/insightdesk-be/repository"
	"github.com/insightdesk/insightdesk-be/service"
	"github.com/insightdesk/insightdesk-be/storage"
	"github.com/insightdesk/insightdesk-be/types"
	"github.com/spf13/cobra"
)

// uploadDocumentCmd ingests a local file into a project without going
// through the HTTP server.
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Ingest a local file into a project",
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		projectID, _ := cmd.Flags().GetString("project-id")
		companyID, _ := cmd.Flags().GetString("company-id")
		if filePath == "" || projectID == "" || companyID == "" {
			log.Fatal("--file, --project-id and --company-id are required")
		}

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

		embeddingService, err := service.NewEmbeddingService(cfg.EmbeddingConfig)
		if err != nil {
			log.Fatalf("Failed to initialize embedding client: %v", err)
		}

		documentRepo := repository.NewDocumentRepo(db)
		chunkRepo := repository.NewChunkRepo(db)
		ingestService := service.NewIngestService(
			documentRepo,
			chunkRepo,
			store,
			embeddingService,
			service.NewExtractService(),
			service.NewChunkService(service.DefaultChunkingConfig),
			cfg.EmbeddingConfig.BatchSize,
		)

		data, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read file: %v", err)
		}

		name := filepath.Base(filePath)
		mimeType := mimeTypeForExtension(filepath.Ext(name))
		if err := ingestService.ValidateUpload(name, mimeType, int64(len(data))); err != nil {
			log.Fatalf("Invalid upload: %v", err)
		}

		// Inline ingestion so the command reports the final status rather
		// than exiting while a background task is in flight.
		doc, err := ingestService.IngestSync(context.Background(), companyID, projectID, name, mimeType, data)
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		fmt.Printf("Document %s ingested into project %s\n", doc.ID, projectID)
	},
}

func mimeTypeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return types.MimeTypePDF
	case ".md", ".markdown":
		return types.MimeTypeMarkdown
	case ".csv":
		return types.MimeTypeCSV
	default:
		return types.MimeTypePlain
	}
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)
	uploadDocumentCmd.Flags().StringP("file", "f", "", "path to the file to ingest")
	uploadDocumentCmd.Flags().StringP("project-id", "p", "", "target project id")
	uploadDocumentCmd.Flags().StringP("company-id", "c", "", "tenant company id")
}
