package service

import (
	"context"
	"fmt"
	"log"
	"os"

	"sportcat_dev_v1_202608/internal/model"
	"sportcat_dev_v1_202608/internal/repository"
)

// ==================== 配置 ====================

// RepairConfig 目录修复配置
type RepairConfig struct {
	// FailedFile 修复仍失败的商品名清单，每次运行整体覆盖
	FailedFile string
}

// ==================== 结果 ====================

// RepairResult 单次修复运行的汇总
type RepairResult struct {
	Scanned int      `json:"scanned"`
	Flagged int      `json:"flagged"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed"`
}

// ==================== 服务 ====================

// RepairService 找出还在用兜底文案的记录并重新生成
// 流程: 探活 -> 备份 -> 加载 -> 扫描 -> 逐条修复 -> 整体回写
type RepairService struct {
	Config      *RepairConfig
	generator   Generator
	catalogRepo repository.CatalogRepository
}

// NewRepairService 创建目录修复服务
func NewRepairService(cfg *RepairConfig, generator Generator, catalogRepo repository.CatalogRepository) *RepairService {
	if cfg.FailedFile == "" {
		cfg.FailedFile = "failed_description_updates.json"
	}
	return &RepairService{
		Config:      cfg,
		generator:   generator,
		catalogRepo: catalogRepo,
	}
}

// needsRepair 识别未充实的记录
// 带显式状态的按状态判断；历史记录(无状态字段)回退到兜底文案逐字节比对
func needsRepair(p *model.Product) bool {
	switch p.EnrichStatus {
	case model.EnrichStatusFallback, model.EnrichStatusPending:
		return true
	case model.EnrichStatusGenerated:
		return false
	}
	return IsDefaultDescription(p.Description, p.ShortDescription, p.ProductName)
}

// Run 执行一次修复
func (s *RepairService) Run(ctx context.Context) (*RepairResult, error) {
	if !s.generator.CheckServer() {
		return nil, fmt.Errorf("生成服务不可达，中止修复")
	}
	log.Printf("[Repair] 生成服务可达，开始修复: %s", s.catalogRepo.Path())

	if !s.catalogRepo.Exists() {
		return nil, fmt.Errorf("目录文件不存在: %s", s.catalogRepo.Path())
	}

	// 备份失败只告警不中止，目录本身此时还没被改动
	if backupPath, err := s.catalogRepo.Backup(); err != nil {
		log.Printf("[Repair] 警告: 备份失败: %v", err)
	} else {
		log.Printf("[Repair] 已备份: %s", backupPath)
	}

	products, err := s.catalogRepo.Load()
	if err != nil {
		return nil, err
	}
	log.Printf("[Repair] 加载 %d 条记录", len(products))

	// 扫描，保持目录原顺序
	var flagged []int
	for i := range products {
		if needsRepair(&products[i]) {
			flagged = append(flagged, i)
		}
	}

	result := &RepairResult{
		Scanned: len(products),
		Flagged: len(flagged),
		Failed:  []string{},
	}

	log.Printf("[Repair] 发现 %d 条未充实记录", len(flagged))
	if len(flagged) == 0 {
		return result, nil
	}

	for _, idx := range flagged {
		p := &products[idx]
		log.Printf("[Repair] 重新生成文案: %s", p.ProductName)

		description, shortDescription := s.generator.Generate(ctx, p.ProductName)

		// 生成结果仍是兜底文案说明这次也失败了，记录保持原样
		if IsDefaultDescription(description, shortDescription, p.ProductName) {
			result.Failed = append(result.Failed, p.ProductName)
			log.Printf("[Repair] 修复失败: %s", p.ProductName)
			continue
		}

		p.Description = description
		p.ShortDescription = shortDescription
		p.UpdatedAt = nowISO()
		p.EnrichStatus = model.EnrichStatusGenerated
		result.Updated++
		log.Printf("[Repair] 修复成功: %s", p.ProductName)
	}

	// 整体回写同一路径，不做增量补丁
	if err := s.catalogRepo.Save(products); err != nil {
		return nil, err
	}
	log.Printf("[Repair] 已回写目录: 成功 %d, 失败 %d", result.Updated, len(result.Failed))

	if len(result.Failed) > 0 {
		if err := s.writeFailedNames(result.Failed); err != nil {
			log.Printf("[Repair] 警告: 失败清单写入失败: %v", err)
		} else {
			log.Printf("[Repair] 失败清单已写入: %s", s.Config.FailedFile)
		}
	}

	return result, nil
}

// writeFailedNames 覆盖写失败清单(JSON 数组)
func (s *RepairService) writeFailedNames(names []string) error {
	data, err := repository.MarshalCatalog(names)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Config.FailedFile, data, 0644)
}
