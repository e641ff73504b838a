// Package https_server 提供参考后端 HTTP 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kama_chat_client/internal/config"
	"kama_chat_client/internal/handler"
	"kama_chat_client/internal/infrastructure/logger"
	"kama_chat_client/internal/infrastructure/middleware"
	"kama_chat_client/internal/router"
	"kama_chat_client/pkg/constants"
)

// Init 创建 Gin 引擎
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则和安全响应头
//  4. 注册业务路由
func Init(handlers *handler.Handlers) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	// 客户端通过 token 请求头携带凭证
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", constants.TOKEN_HEADER}
	engine.Use(cors.New(corsConfig))

	mainConf := config.GetConfig().MainConfig
	engine.Use(middleware.SecureHeaders(mainConf.Host, mainConf.Port, mainConf.SSLRedirect))

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
