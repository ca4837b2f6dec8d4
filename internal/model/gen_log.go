package model

import "time"

// GenCallLog 文案生成调用日志
// 每次对生成服务的请求（含重试）落一条，便于事后排查哪些商品反复失败
type GenCallLog struct {
	ID        int64 `gorm:"primary_key;AUTO_INCREMENT"`
	CreatedAt time.Time

	// 关联
	RunID       string `gorm:"size:36;index;comment:批次ID(一次convert/repair为一批)"`
	ProductName string `gorm:"size:255;index;comment:商品名称"`

	// 调用信息
	ModelName string `gorm:"size:64;comment:模型名称"`
	Attempt   int    `gorm:"default:1;comment:第几次尝试"`

	// 性能
	DurationMs int64 `gorm:"comment:耗时(毫秒)"`

	// 状态
	Status   string `gorm:"size:32;index;comment:状态(success/failed/fallback)"`
	ErrorMsg string `gorm:"size:1024;comment:错误信息"`
}

func (GenCallLog) TableName() string {
	return "gen_call_logs"
}

// ==================== 状态常量 ====================

const (
	GenCallStatusSuccess = "success"
	GenCallStatusFailed  = "failed"
	// fallback: 重试耗尽，最终返回了默认文案
	GenCallStatusFallback = "fallback"
)
