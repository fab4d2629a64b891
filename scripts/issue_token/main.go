// 为本地调试签发 HS256 令牌，使用 configs/config.yaml 中的 jwt 配置
//
// 用法: go run ./scripts/issue_token -uid <user id> [-email a@b.c] [-name 名字] [-ttl 24h]

package main

import (
	"achievements_tracker_backend/internal/config"
	"achievements_tracker_backend/internal/util"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

func main() {
	configDir := flag.String("config", "configs", "config.yaml 所在目录")
	uid := flag.String("uid", "", "用户ID")
	email := flag.String("email", "", "邮箱")
	name := flag.String("name", "", "显示名")
	ttl := flag.Duration("ttl", 24*time.Hour, "有效期")
	flag.Parse()

	if *uid == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	token, err := util.GenerateJWT(util.TokenOptions{
		UserID:     *uid,
		Email:      *email,
		Name:       *name,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		Expiration: *ttl,
	}, cfg.JWT.Secret)
	if err != nil {
		log.Fatalf("签发失败: %v", err)
	}
	fmt.Println(token)
}
