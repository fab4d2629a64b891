// 将旧版扁平集合 achievements 中的成就组迁移到指定用户下
//
// 迁移前会把旧集合完整备份到对象存储 (storage.type)，备份失败则不做任何写入。
// 目标用户下已存在的同 ID 成就组会被覆盖。
//
// 用法: go run ./scripts/migrate_legacy -uid <user id> [-delete-source] [-backup=false]

package main

import (
	"achievements_tracker_backend/internal/config"
	"achievements_tracker_backend/internal/service"
	"achievements_tracker_backend/pkg/database"
	"achievements_tracker_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func main() {
	configDir := flag.String("config", "configs", "config.yaml 所在目录")
	uid := flag.String("uid", "", "目标用户ID")
	deleteSource := flag.Bool("delete-source", false, "迁移成功后删除旧集合中的文档")
	backup := flag.Bool("backup", true, "迁移前备份旧集合")
	timeout := flag.Duration("timeout", 5*time.Minute, "整个迁移的超时时间")
	flag.Parse()

	if *uid == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	store, err := database.OpenDocumentStore(cfg)
	if err != nil {
		log.Fatalf("存储连接失败: %v", err)
	}

	var storage *service.StorageService
	if *backup {
		storage, err = service.NewStorageService(&cfg.Storage)
		if err != nil {
			log.Fatalf("对象存储初始化失败: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	defer store.Close(context.Background())

	migration := service.NewMigrationService(store, storage)
	result, err := migration.MigrateLegacyGroups(ctx, service.MigrationOptions{
		UID:          *uid,
		DeleteSource: *deleteSource,
		Backup:       *backup,
	})
	if err != nil {
		log.Fatalf("迁移失败: %v", err)
	}

	if result.Copied == 0 {
		log.Println("nothing to migrate")
		return
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	if err := enc.Encode(result); err != nil {
		log.Fatalf("输出结果失败: %v", err)
	}
}
