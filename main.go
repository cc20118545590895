// @title 言语训练后端 API
// @version 1.0
// @description 面向 ASD 儿童言语训练的自适应推荐后端服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"speech_therapy_backend/internal/app"
	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
