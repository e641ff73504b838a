// Package snowflake 生成消息 ID
package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init 初始化节点，machineID 取值 0-1023，越界时使用 1
func Init(machineID int64) error {
	if machineID < 0 || machineID > 1023 {
		zap.L().Warn("invalid snowflake machine id, using 1", zap.Int64("machineId", machineID))
		machineID = 1
	}
	n, err := snowflake.NewNode(machineID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	zap.L().Info("snowflake node initialized", zap.Int64("machineId", machineID))
	return nil
}

// GenerateIDString 生成字符串形式的 ID，未初始化时按节点 1 初始化
func GenerateIDString() string {
	mu.Lock()
	n := node
	mu.Unlock()
	if n == nil {
		_ = Init(1)
		mu.Lock()
		n = node
		mu.Unlock()
	}
	return n.Generate().String()
}
