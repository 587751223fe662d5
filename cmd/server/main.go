package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/formscan/document-ocr-service/api"
	"github.com/formscan/document-ocr-service/internal/auth"
	"github.com/formscan/document-ocr-service/internal/db"
	"github.com/formscan/document-ocr-service/internal/models"
	"github.com/formscan/document-ocr-service/internal/storage"
)

func main() {
	// Local development convenience; missing .env is not an error
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Initialize JWT
	if err := auth.Init(); err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	log.Println("JWT authentication initialized")

	// Initialize database connection pool
	if err := db.Init(); err != nil {
		log.Printf("Warning: Database not available: %v", err)
		log.Println("Running in extraction-only mode (no history persistence)")
	} else {
		defer db.Close()
		log.Println("Database connection pool initialized")
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		log.Printf("Warning: MinIO storage not available: %v", err)
		log.Println("Scanned images will not be stored")
	} else {
		log.Println("MinIO storage initialized")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Create API handler
	handler := api.NewHandler(config)
	router := handler.SetupRoutes()

	// Add login endpoint
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Wrap router with JWT middleware (the extraction surface and /health
	// stay public, document history requires a token)
	protectedRouter := auth.JWTMiddleware(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting Document OCR Service v%s on %s", api.Version, addr)
	log.Printf("OCR Engine: %s", config.OCR.Engine)
	log.Printf("Default AI Provider: %s", config.AI.DefaultProvider)
	log.Printf("Database: %v", db.Pool != nil)
	log.Printf("Storage: %v", storage.Client != nil)
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/extract                      - Upload & extract fields", addr)
	log.Printf("  POST http://%s/verify                       - Verify submitted fields", addr)
	log.Printf("  POST http://%s/reset                        - Clear a session", addr)
	log.Printf("  POST http://%s/api/ocr/process-base64       - Extract from base64 image", addr)
	log.Printf("  POST http://%s/api/login                    - Authenticate", addr)
	log.Printf("  GET  http://%s/api/documents                - Document history (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/documents/{id}           - Single document (requires JWT)", addr)
	log.Printf("  DELETE http://%s/api/documents/{id}         - Delete document (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/documents/{id}/image     - Stored scan (requires JWT)", addr)
	log.Printf("  POST http://%s/api/documents/{id}/reprocess - Re-run extraction (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/stats                    - Monthly stats (requires JWT)", addr)
	log.Printf("  GET  http://%s/health                       - Health check", addr)

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadConfig(path string) (*models.Config, error) {
	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config models.Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if engine := os.Getenv("OCR_ENGINE"); engine != "" {
		config.OCR.Engine = engine
	}
	if mode := os.Getenv("OCR_DEFAULT_MODE"); mode != "" {
		config.OCR.DefaultMode = mode
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.AI.Ollama.BaseURL = baseURL
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}

	return &config, nil
}
