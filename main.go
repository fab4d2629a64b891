// @title Achievements Tracker API
// @version 1.0
// @description 按用户隔离的成就组管理接口。

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer 令牌，格式: Bearer {token}

package main

import (
	"achievements_tracker_backend/internal/app"
	"achievements_tracker_backend/internal/config"
	"achievements_tracker_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "config.yaml 所在目录")
	watch := flag.Bool("watch", true, "配置文件变更后热更新日志级别")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *watch {
		application.WatchConfig(*configDir)
	}

	application.Run()
}
