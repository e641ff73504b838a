// kama_chat_devserver 本地联调用的参考后端
// 实现客户端依赖的 REST 接口和 /ws 推送通道，数据默认保存在内存中，storage = "mysql" 时落库
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"kama_chat_client/internal/config"
	"kama_chat_client/internal/dao/memory"
	"kama_chat_client/internal/dao/mysql"
	"kama_chat_client/internal/handler"
	"kama_chat_client/internal/https_server"
	"kama_chat_client/internal/infrastructure/logger"
	"kama_chat_client/internal/infrastructure/validate"
	"kama_chat_client/internal/service"
	"kama_chat_client/internal/service/chat"
	"kama_chat_client/pkg/util/jwt"
	"kama_chat_client/pkg/util/snowflake"
)

func main() {
	var configPath string
	flagSet := pflag.NewFlagSet("kama_chat_devserver", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to config.toml (default: search configs/)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("parse flags: %v", err)
	}

	// 1. 加载配置
	if configPath != "" {
		if err := config.LoadFile(configPath); err != nil {
			log.Fatalf("load config %s: %v", configPath, err)
		}
	}
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, logger.ModeDev); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer logger.Sync()
	zap.L().Info("日志初始化成功")

	// 3. 参数校验器（gin 绑定共用同一套翻译）
	if err := validate.InitGin("en"); err != nil {
		zap.L().Fatal("validator 初始化失败", zap.Error(err))
	}

	// 4. 初始化 JWT 和雪花算法
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.ExpiryHours)
	if err := snowflake.Init(conf.SnowflakeConfig.MachineID); err != nil {
		zap.L().Fatal("snowflake 初始化失败", zap.Error(err))
	}
	zap.L().Info("JWT / snowflake 初始化成功")

	// 5. 推送中心
	hub := chat.NewHub()
	go hub.Start()

	// 6. Service 和 Handler (依赖注入)
	repos := memory.NewRepositories()
	if conf.MainConfig.Storage == "mysql" {
		mysqlRepos, db, err := mysql.Open(&conf.MysqlConfig)
		if err != nil {
			zap.L().Fatal("数据库初始化失败", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		repos = mysqlRepos
		zap.L().Info("数据库初始化成功")
	}
	services := service.NewServices(repos, hub)
	handlers := handler.NewHandlers(services, hub)

	// 7. HTTP 服务器
	engine := https_server.Init(handlers)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
