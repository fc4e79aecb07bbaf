package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/internal/routes"
	"github.com/felipekgouvea/cerg/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	config.LoadJwtKey()
	config.ConnectDB()
	config.ConnectRedis()

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Service{},
		&models.ServiceValue{},
		&models.Enrollment{},
		&models.PreRegistration{},
		&models.PreReenrollment{},
		&models.Agreement{},
		&models.Installment{},
		&models.Contract{},
	)
	if err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	router := gin.Default()
	routes.SetupRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
