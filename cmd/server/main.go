package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"techblog/internal/config"
	"techblog/internal/db"
	"techblog/internal/handlers"
	"techblog/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	config.InitConfig(".")
	config.InitRedis()
	db.Init()
	handlers.InitGoogleOAuth()

	r := gin.Default()
	router.RegisterRoutes(r)

	addr := config.GlobalConfig.Server.Port
	log.Printf("Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
