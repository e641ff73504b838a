// Package mysql 参考后端的 MySQL 存储
// 负责建立连接、自动迁移表结构并返回 Repository 实例
package mysql

import (
	"fmt"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"kama_chat_client/internal/config"
	"kama_chat_client/internal/dao/repository"
)

// DSN 按配置拼接连接串
// 格式：user:password@tcp(host:port)/database?params
func DSN(conf *config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)
}

// Open 连接数据库并迁移表结构
func Open(conf *config.MysqlConfig) (*repository.Repositories, *gorm.DB, error) {
	return OpenDSN(DSN(conf))
}

// OpenDSN 使用完整连接串连接数据库
// TranslateError 让唯一键冲突以 gorm.ErrDuplicatedKey 返回
func OpenDSN(dsn string) (*repository.Repositories, *gorm.DB, error) {
	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(&userRow{}, &messageRow{}); err != nil {
		return nil, nil, err
	}
	zap.L().Info("mysql storage ready")
	return NewRepositories(db), db, nil
}

// NewRepositories 将 db 注入到所有 Repository
func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Message: NewMessageRepository(db),
	}
}

// 确保实现了接口
var (
	_ repository.UserRepository    = (*userRepository)(nil)
	_ repository.MessageRepository = (*messageRepository)(nil)
)
