package main

import (
	"log"

	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/config"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/db"
	"github.com/ethan7zhanghx/Discussion-Fetcher/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.Load()

	// Initialize Database
	db.Init(cfg.DatabasePath)

	// Initialize Gin
	r := gin.Default()

	router.RegisterRoutes(r, cfg)

	log.Printf("Discussion API server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}
