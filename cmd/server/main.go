package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/isp-kanban/internal/config"
	"github.com/yukikurage/isp-kanban/internal/database"
	"github.com/yukikurage/isp-kanban/internal/handlers"
	"github.com/yukikurage/isp-kanban/internal/repository"
	"github.com/yukikurage/isp-kanban/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Println("OPENAI_API_KEY not set, task drafting is disabled")
	}

	taskService := services.NewTaskService(repository.NewTaskRepository(database.GetDB()), aiService)
	r := handlers.SetupRouter(taskService, cfg.CORSOrigin)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
