// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库

	"kama_chat_client/pkg/constants"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName     string `toml:"appName"`     // 应用名称，用于日志标识等
	Host        string `toml:"host"`        // 参考后端监听地址，如 "0.0.0.0"
	Port        int    `toml:"port"`        // 参考后端监听端口，如 5000
	BackendURL  string `toml:"backendUrl"`  // 客户端访问的后端地址，如 "http://localhost:5000"
	Storage     string `toml:"storage"`     // 参考后端的存储："memory"（默认）或 "mysql"
	SSLRedirect bool   `toml:"sslRedirect"` // 参考后端是否把 HTTP 重定向到 HTTPS
}

// ClientConfig 客户端核心配置
type ClientConfig struct {
	RequestTimeout time.Duration `toml:"requestTimeout"` // 单次 HTTP 请求超时
	AckTimeout     time.Duration `toml:"ackTimeout"`     // 已读回执超时（回执失败只记日志）
	DialTimeout    time.Duration `toml:"dialTimeout"`    // 推送通道握手超时
	TokenStore     string        `toml:"tokenStore"`     // token 持久化方式："file" 或 "redis"
	TokenFile      string        `toml:"tokenFile"`      // file 模式下的 token 文件路径
	TokenKey       string        `toml:"tokenKey"`       // redis 模式下的键名
}

// MysqlConfig MySQL 数据库连接配置（参考后端 storage = "mysql" 时使用）
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// JWTConfig JWT 认证配置（参考后端签发 token 使用）
type JWTConfig struct {
	Secret      string `toml:"secret"`      // JWT 签名密钥，建议 32 字符以上
	ExpiryHours int    `toml:"expiryHours"` // token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	ClientConfig    `toml:"clientConfig"`    // 客户端配置
	MysqlConfig     `toml:"mysqlConfig"`     // MySQL 配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	JWTConfig       `toml:"jwtConfig"`       // JWT 配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花算法配置
}

// config 全局配置单例，延迟加载
var config *Config

// Default 返回未找到配置文件时使用的默认配置
func Default() *Config {
	return &Config{
		MainConfig: MainConfig{
			AppName:    "kama_chat_client",
			Host:       "127.0.0.1",
			Port:       5000,
			BackendURL: constants.DEFAULT_BACKEND_URL,
			Storage:    "memory",
		},
		ClientConfig: ClientConfig{
			RequestTimeout: 10 * time.Second,
			AckTimeout:     5 * time.Second,
			DialTimeout:    5 * time.Second,
			TokenStore:     "file",
			TokenFile:      ".kama_chat/token",
			TokenKey:       constants.DEFAULT_TOKEN_KEY,
		},
		MysqlConfig: MysqlConfig{
			Host:         "127.0.0.1",
			Port:         3306,
			User:         "root",
			DatabaseName: "kama_chat",
		},
		RedisConfig: RedisConfig{
			Host: "127.0.0.1",
			Port: 6379,
		},
		LogConfig: LogConfig{
			LogPath: "logs",
			Level:   "info",
		},
		JWTConfig: JWTConfig{
			Secret:      "kama-chat-dev-secret",
			ExpiryHours: constants.TOKEN_EXPIRY_HOURS,
		},
		SnowflakeConfig: SnowflakeConfig{
			MachineID: 1,
		},
	}
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	// 候选配置文件路径（优先加载本地配置）
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",       // 从子目录运行时的路径
	}

	for _, path := range paths {
		if err := LoadFile(path); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFile 加载指定路径的配置文件，文件中未出现的字段保留默认值
func LoadFile(path string) error {
	conf := Default()
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return err
	}
	config = conf
	return nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		if err := LoadConfig(); err != nil {
			config = Default() // 忽略加载错误，使用默认值
		}
	}
	return config
}
