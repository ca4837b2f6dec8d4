package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"sportcat_dev_v1_202608/internal/service"
)

// ==================== RepairTask 目录修复定时任务 ====================

// RepairTask 定时重跑目录修复（serve 模式下使用）
// 生成服务挂掉的时间段里落下的兜底记录，靠它周期性补齐
type RepairTask struct {
	repairSvc *service.RepairService
	cron      *cron.Cron
	spec      string
}

// NewRepairTask 创建修复定时任务
// spec 为空时默认每日凌晨 2 点
func NewRepairTask(repairSvc *service.RepairService, spec string) *RepairTask {
	if spec == "" {
		spec = "0 0 2 * * *"
	}
	return &RepairTask{
		repairSvc: repairSvc,
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
	}
}

// Start 启动定时任务
func (t *RepairTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		log.Println("[RepairTask] 开始定时目录修复...")
		result, err := t.repairSvc.Run(ctx)
		if err != nil {
			log.Printf("[RepairTask] 修复失败: %v", err)
			return
		}
		log.Printf("[RepairTask] 修复完成: 扫描 %d, 标记 %d, 更新 %d, 仍失败 %d",
			result.Scanned, result.Flagged, result.Updated, len(result.Failed))
	})
	if err != nil {
		log.Printf("[RepairTask] cron 表达式非法 (%s): %v", t.spec, err)
		return
	}

	t.cron.Start()
	log.Printf("[RepairTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务
func (t *RepairTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[RepairTask] 已停止")
}
