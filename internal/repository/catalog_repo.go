package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"sportcat_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// CatalogRepository 目录仓储接口
// 目录以 JSON 数组文件存储（对接导入工具的既定格式），不是数据库表
type CatalogRepository interface {
	Path() string
	Exists() bool
	Load() ([]model.Product, error)
	Save(products []model.Product) error

	// Backup 生成带时间戳的备份副本，返回备份文件路径
	Backup() (string, error)
}

// ==================== 文件实现 ====================

type catalogFileRepo struct {
	path string
}

// NewCatalogRepository 创建文件目录仓储
func NewCatalogRepository(path string) CatalogRepository {
	return &catalogFileRepo{path: path}
}

func (r *catalogFileRepo) Path() string {
	return r.path
}

func (r *catalogFileRepo) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

func (r *catalogFileRepo) Load() ([]model.Product, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("读取目录文件失败: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("解析目录文件失败: %w", err)
	}

	return products, nil
}

func (r *catalogFileRepo) Save(products []model.Product) error {
	data, err := MarshalCatalog(products)
	if err != nil {
		return err
	}

	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("写入目录文件失败: %w", err)
	}

	return nil
}

func (r *catalogFileRepo) Backup() (string, error) {
	backupPath := fmt.Sprintf("%s.backup.%s", r.path, time.Now().Format("20060102150405"))

	src, err := os.Open(r.path)
	if err != nil {
		return "", fmt.Errorf("打开目录文件失败: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("创建备份文件失败: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("复制备份内容失败: %w", err)
	}

	return backupPath, nil
}

// ==================== 序列化辅助 ====================

// MarshalCatalog 按既定格式序列化：两空格缩进、保留非 ASCII、不转义 HTML
// (描述字段带 HTML 标签，转义后导入端无法还原)
func MarshalCatalog(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("序列化目录失败: %w", err)
	}
	return buf.Bytes(), nil
}
