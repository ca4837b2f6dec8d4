package repository

import (
	"context"

	"gorm.io/gorm"

	"sportcat_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// GenCallLogRepository 生成调用日志仓储接口
type GenCallLogRepository interface {
	Create(ctx context.Context, log *model.GenCallLog) error
	GetByID(ctx context.Context, id int64) (*model.GenCallLog, error)

	// 统计查询
	GetRunStats(ctx context.Context, runID string) (*GenRunStats, error)
	ListFallbackNames(ctx context.Context, runID string) ([]string, error)
}

// ==================== 统计结构 ====================

// GenRunStats 单批次生成用量统计
type GenRunStats struct {
	TotalCalls    int64   `json:"total_calls"`
	SuccessCount  int64   `json:"success_count"`
	FailedCount   int64   `json:"failed_count"`
	FallbackCount int64   `json:"fallback_count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// ==================== 仓储实现 ====================

type genCallLogRepo struct {
	db *gorm.DB
}

// NewGenCallLogRepository 创建生成调用日志仓储
func NewGenCallLogRepository(db *gorm.DB) GenCallLogRepository {
	return &genCallLogRepo{db: db}
}

func (r *genCallLogRepo) Create(ctx context.Context, log *model.GenCallLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *genCallLogRepo) GetByID(ctx context.Context, id int64) (*model.GenCallLog, error) {
	var log model.GenCallLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *genCallLogRepo) GetRunStats(ctx context.Context, runID string) (*GenRunStats, error) {
	var stats GenRunStats

	err := r.db.WithContext(ctx).Model(&model.GenCallLog{}).
		Where("run_id = ?", runID).
		Select(`
			COUNT(*) as total_calls,
			SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed_count,
			SUM(CASE WHEN status = 'fallback' THEN 1 ELSE 0 END) as fallback_count,
			AVG(duration_ms) as avg_duration_ms
		`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *genCallLogRepo) ListFallbackNames(ctx context.Context, runID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.GenCallLog{}).
		Where("run_id = ? AND status = ?", runID, model.GenCallStatusFallback).
		Order("id").
		Pluck("product_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
