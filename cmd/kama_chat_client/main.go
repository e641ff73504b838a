// kama_chat_client 终端聊天客户端
// 读取标准输入的命令驱动客户端核心，推送事件实时打印到标准输出
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"kama_chat_client/internal/client"
	"kama_chat_client/internal/config"
	"kama_chat_client/internal/infrastructure/logger"
)

func main() {
	var configPath, backendURL, logLevel string
	flagSet := pflag.NewFlagSet("kama_chat_client", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to config.toml (default: search configs/)")
	flagSet.StringVar(&backendURL, "backend", "", "backend base URL, overrides mainConfig.backendUrl")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
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
	if backendURL != "" {
		conf.MainConfig.BackendURL = backendURL
	}

	// 2. 日志只写 stderr，标准输出留给交互
	logConf := conf.LogConfig
	logConf.Level = logLevel
	if err := logger.Init(&logConf, logger.ModeConsole); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer logger.Sync()

	// 3. 组装客户端核心
	core, err := client.New(conf)
	if err != nil {
		zap.L().Fatal("init client failed", zap.Error(err))
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := newTerminal(core, os.Stdout)
	core.Conversations.SetListener(term.onChange)

	// 4. 尝试用本地 token 恢复会话
	if sess := core.Start(ctx); sess != nil {
		term.printf("welcome back, %s\n", sess.FullName)
		term.refreshPeers(ctx)
	} else {
		term.printf("not logged in, type `help` for commands\n")
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		term.prompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout)
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := term.exec(ctx, line); quit {
				return
			}
		}
	}
}
