package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/isp-kanban/internal/middleware"
	"github.com/yukikurage/isp-kanban/internal/services"
)

// SetupRouter registers every route of the API on a new gin engine
func SetupRouter(service *services.TaskService, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(corsOrigin))

	taskHandler := NewTaskHandler(service)

	r.GET("/", Root)
	r.GET("/health", Health)

	tasks := r.Group("/tasks")
	{
		tasks.GET("/", taskHandler.ListTasks)
		tasks.POST("/", taskHandler.CreateTask)
		tasks.POST("/generate", taskHandler.GenerateTasks)
		tasks.GET("/:id", middleware.RequireTask(service), taskHandler.GetTask)
		tasks.PUT("/:id", middleware.RequireTask(service), taskHandler.UpdateTask)
		tasks.DELETE("/:id", middleware.RequireTask(service), taskHandler.DeleteTask)
	}

	return r
}
