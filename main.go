// @title QuizMaster 后端 API
// @version 1.0
// @description QuizMaster 测验平台的后端服务器。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"context"
	"flag"
	"log"
	"quizmaster_backend/internal/app"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/pkg/database"
	"quizmaster_backend/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 命令行参数
	configPath := flag.String("config", "configs", "配置文件所在目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移或建索引，完成后退出")
	flag.Parse()

	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment and config file")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	// 迁移完成后直接退出
	if cfg.MigrateOnly {
		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		ctx := context.Background()
		store, err := database.InitStore(ctx, cfg)
		if err != nil {
			logger.Log.Fatal("Migration failed", zap.Error(err))
		}
		if err := store.Close(ctx); err != nil {
			logger.Log.Warn("Failed to close store", zap.Error(err))
		}
		logger.Log.Info("数据库迁移完成，退出程序", zap.String("driver", cfg.Database.Driver))
		return
	}

	application := app.NewApp(cfg)
	application.Run()
}
