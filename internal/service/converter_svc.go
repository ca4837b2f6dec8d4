package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"sportcat_dev_v1_202608/internal/model"
	"sportcat_dev_v1_202608/internal/repository"
)

// ==================== 配置 ====================

// ConverterConfig 批量转换配置
type ConverterConfig struct {
	CSVFile string
}

// ==================== 服务 ====================

// ConverterService 把源表(CSV)整体转换成目录文件
// 严格按输入顺序逐行处理，不做并行
type ConverterService struct {
	Config      *ConverterConfig
	generator   Generator
	catalogRepo repository.CatalogRepository
}

// NewConverterService 创建批量转换服务
func NewConverterService(cfg *ConverterConfig, generator Generator, catalogRepo repository.CatalogRepository) *ConverterService {
	return &ConverterService{
		Config:      cfg,
		generator:   generator,
		catalogRepo: catalogRepo,
	}
}

// requiredColumns 源表必备列，缺任何一列整个转换不会开始
var requiredColumns = []string{"Product Name", "SKU", "Category", "Price", "Image URLs"}

// Run 执行转换：读源表 -> 逐行生成文案并构建记录 -> 整体写目录
// 任何一行价格解析失败都会中止整次运行，不写出半个目录
func (s *ConverterService) Run(ctx context.Context) error {
	rows, err := s.readRows()
	if err != nil {
		return err
	}

	log.Printf("[Converter] 读入 %d 行源数据: %s", len(rows), s.Config.CSVFile)

	products := make([]model.Product, 0, len(rows))
	for i, row := range rows {
		description, shortDescription := s.generator.Generate(ctx, row.ProductName)

		product, err := BuildProduct(row, description, shortDescription)
		if err != nil {
			return fmt.Errorf("第 %d 行构建失败 (%s): %w", i+1, row.ProductName, err)
		}
		products = append(products, *product)
	}

	if err := s.catalogRepo.Save(products); err != nil {
		return err
	}

	log.Printf("[Converter] 转换完成，已写入 %d 条记录: %s", len(products), s.catalogRepo.Path())
	return nil
}

// readRows 整表读入内存，顺带校验表头
func (s *ConverterService) readRows() ([]model.SourceRow, error) {
	f, err := os.Open(s.Config.CSVFile)
	if err != nil {
		return nil, fmt.Errorf("打开源表失败: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析 CSV 失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("源表为空: %s", s.Config.CSVFile)
	}

	// 表头 -> 列下标
	colIndex := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		colIndex[name] = idx
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("源表缺少必备列: %q", col)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	rows := make([]model.SourceRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, model.SourceRow{
			ProductName: field(record, "Product Name"),
			SKU:         field(record, "SKU"),
			Category:    field(record, "Category"),
			Price:       field(record, "Price"),
			ImageURLs:   field(record, "Image URLs"),
			Sizes:       field(record, "Sizes"),
			Colors:      field(record, "Colors"),
		})
	}

	return rows, nil
}
