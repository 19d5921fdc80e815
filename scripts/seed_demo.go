// 写入演示数据脚本
//
// 创建一个演示账号，并用配置的模型服务根据一段文本生成一份公开测验。
// 适用于首次部署后快速验证生成、创建、作答流程。
//
// 用法: go run scripts/seed_demo.go -text "光合作用的基本过程"

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/service"
	"quizmaster_backend/internal/util"
	"quizmaster_backend/pkg/database"
	"quizmaster_backend/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	text := flag.String("text", "The water cycle: evaporation, condensation, precipitation and collection.", "生成测验所用的文本")
	num := flag.Int("n", 5, "题目数量")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)

	ctx := context.Background()
	store, err := database.InitStore(ctx, cfg)
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}
	defer store.Close(ctx)

	// 1. 演示账号，已存在时直接复用
	auth := service.NewAuthService(store.Users, nil, cfg)
	user, err := auth.Register(ctx, &service.RegisterRequest{
		Username: "demo",
		Email:    "demo@quizmaster.local",
		Password: "demo123456",
	})
	if errors.Is(err, util.ErrConflict) {
		user, err = store.Users.FindByUsername(ctx, "demo")
	}
	if err != nil {
		log.Fatalf("创建演示账号失败: %v", err)
	}

	// 2. 调用模型生成草稿
	generator, err := service.NewQuizGenerator(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("模型服务初始化失败: %v", err)
	}
	generation := service.NewGenerationService(generator, cfg.AI)
	draft, err := generation.Generate(ctx, user.ID, &service.GenerateQuizRequest{
		Text:         *text,
		NumQuestions: *num,
	})
	if err != nil {
		log.Fatalf("生成测验失败: %v", err)
	}

	// 3. 保存为公开测验
	quizzes := service.NewQuizService(store.Quizzes, store.Users, nil)
	quiz, err := quizzes.CreateQuiz(ctx, user.ID, draft)
	if err != nil {
		log.Fatalf("保存测验失败: %v", err)
	}

	log.Printf("完成！测验 %s（%d 题）已创建，账号 demo / demo123456", quiz.ID, len(quiz.Questions))
}
