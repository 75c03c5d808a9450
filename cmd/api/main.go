package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/middleware"
	"eyekra-backend/internal/routes"
	"eyekra-backend/pkg/utils"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Connect DB + migrasi
	config.ConnectDB()

	// 3. Init Firebase (optional, server tetap jalan tanpa credential)
	utils.InitFCM()

	// 4. Init Router + middleware global
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	// 5. Setup Routes
	routes.SetupRoutes(r)

	// Health check buat load balancer
	r.GET("/ping", func(c *gin.Context) {
		utils.APIResponse(c, 200, true, "Server OK!", nil)
	})

	// 6. Run Server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server berjalan di port " + port)
	r.Run(":" + port)
}
