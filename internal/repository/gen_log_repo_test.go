package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sportcat_dev_v1_202608/internal/model"
)

// ==================== 测试辅助函数 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.GenCallLog{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

// ==================== 调用日志测试 ====================

func TestGenCallLogRepo_CreateAndGet(t *testing.T) {
	repo := NewGenCallLogRepository(setupTestDB(t))
	ctx := context.Background()

	entry := &model.GenCallLog{
		RunID:       "run-1",
		ProductName: "Giày Nike Mercurial",
		ModelName:   "llama3.1:8b",
		Attempt:     1,
		DurationMs:  1200,
		Status:      model.GenCallStatusSuccess,
	}
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ProductName != entry.ProductName || got.Status != model.GenCallStatusSuccess {
		t.Errorf("读回的记录不符: %+v", got)
	}
}

func TestGenCallLogRepo_GetRunStats(t *testing.T) {
	repo := NewGenCallLogRepository(setupTestDB(t))
	ctx := context.Background()

	seed := []model.GenCallLog{
		{RunID: "run-1", ProductName: "A", Attempt: 1, DurationMs: 100, Status: model.GenCallStatusSuccess},
		{RunID: "run-1", ProductName: "B", Attempt: 1, DurationMs: 200, Status: model.GenCallStatusFailed},
		{RunID: "run-1", ProductName: "B", Attempt: 2, DurationMs: 300, Status: model.GenCallStatusFailed},
		{RunID: "run-1", ProductName: "B", Attempt: 3, DurationMs: 0, Status: model.GenCallStatusFallback},
		{RunID: "run-khac", ProductName: "C", Attempt: 1, DurationMs: 999, Status: model.GenCallStatusSuccess},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	stats, err := repo.GetRunStats(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunStats() error = %v", err)
	}

	if stats.TotalCalls != 4 {
		t.Errorf("total_calls = %d, want 4", stats.TotalCalls)
	}
	if stats.SuccessCount != 1 || stats.FailedCount != 2 || stats.FallbackCount != 1 {
		t.Errorf("状态分布不对: %+v", stats)
	}
}

func TestGenCallLogRepo_ListFallbackNames(t *testing.T) {
	repo := NewGenCallLogRepository(setupTestDB(t))
	ctx := context.Background()

	seed := []model.GenCallLog{
		{RunID: "run-1", ProductName: "A", Status: model.GenCallStatusFallback},
		{RunID: "run-1", ProductName: "B", Status: model.GenCallStatusSuccess},
		{RunID: "run-1", ProductName: "C", Status: model.GenCallStatusFallback},
		{RunID: "run-khac", ProductName: "D", Status: model.GenCallStatusFallback},
	}
	for i := range seed {
		_ = repo.Create(ctx, &seed[i])
	}

	names, err := repo.ListFallbackNames(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListFallbackNames() error = %v", err)
	}

	if len(names) != 2 || names[0] != "A" || names[1] != "C" {
		t.Errorf("names = %v, want [A C]", names)
	}
}
