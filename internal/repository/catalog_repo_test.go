package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sportcat_dev_v1_202608/internal/model"
)

func sampleProducts() []model.Product {
	return []model.Product{
		{
			ProductName:  "Áo bóng đá Việt Nam",
			ProductSKU:   "AO-VN-01",
			CategoryIDs:  []int{1, 2, 4},
			Price:        450000,
			Description:  "<p>Mô tả có thẻ HTML & ký tự tiếng Việt</p>",
			MediaGallery: []model.MediaEntry{},
			ProductType:  model.ProductTypeSimple,
			Variants:     []model.Variant{},
			Attributes:   []model.AttributeDef{},
		},
	}
}

func TestCatalogRepo_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	repo := NewCatalogRepository(path)

	if repo.Exists() {
		t.Error("保存前文件不应存在")
	}

	if err := repo.Save(sampleProducts()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !repo.Exists() {
		t.Error("保存后 Exists() 应为 true")
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].ProductSKU != "AO-VN-01" {
		t.Errorf("读回的目录不符: %+v", got)
	}
	if got[0].Description != "<p>Mô tả có thẻ HTML & ký tự tiếng Việt</p>" {
		t.Errorf("HTML 文案在存取后变形: %q", got[0].Description)
	}
}

func TestCatalogRepo_OutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	repo := NewCatalogRepository(path)

	if err := repo.Save(sampleProducts()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	text := string(data)

	// 两空格缩进、HTML 和越南语都不转义
	if !strings.Contains(text, "\n  {") {
		t.Error("输出应为两空格缩进的 JSON")
	}
	if strings.Contains(text, `<`) {
		t.Error("HTML 标签不应被转义")
	}
	if !strings.Contains(text, "Áo bóng đá Việt Nam") {
		t.Error("越南语字符应原样保留，不转义成 \\u 序列")
	}
}

func TestCatalogRepo_LoadMissing(t *testing.T) {
	repo := NewCatalogRepository(filepath.Join(t.TempDir(), "khong_co.json"))
	if _, err := repo.Load(); err == nil {
		t.Fatal("文件不存在 Load() 应报错")
	}
}

func TestCatalogRepo_Backup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	repo := NewCatalogRepository(path)

	if err := repo.Save(sampleProducts()); err != nil {
		t.Fatal(err)
	}

	backupPath, err := repo.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	// 命名约定: <原文件>.backup.<YYYYMMDDHHMMSS>
	base := filepath.Base(backupPath)
	if !strings.HasPrefix(base, "products.json.backup.") {
		t.Errorf("备份文件名不符: %s", base)
	}
	suffix := strings.TrimPrefix(base, "products.json.backup.")
	if len(suffix) != 14 {
		t.Errorf("时间戳应为 14 位: %q", suffix)
	}

	orig, _ := os.ReadFile(path)
	backed, _ := os.ReadFile(backupPath)
	if string(orig) != string(backed) {
		t.Error("备份内容应与原文件一致")
	}
}

func TestCatalogRepo_BackupMissing(t *testing.T) {
	repo := NewCatalogRepository(filepath.Join(t.TempDir(), "khong_co.json"))
	if _, err := repo.Backup(); err == nil {
		t.Fatal("原文件不存在时 Backup() 应报错")
	}
}

func TestCatalogRepo_LegacyFileWithoutStatus(t *testing.T) {
	// 老脚本写出的目录没有 enrich_status 字段，必须能原样读进来
	legacy := `[
  {
    "product_name": "Giày Puma Future",
    "product_sku": "GP-01",
    "categoryIds": [1, 5, 6],
    "price": 900000.0,
    "special_price": null,
    "fallbackPrice": 900000.0,
    "salable_qty": 0,
    "short_description": "ngắn",
    "description": "dài",
    "mediaGallery": [],
    "product_type": "SIMPLE",
    "variants": [],
    "attributes": [],
    "isDisabled": false,
    "isDeleted": false,
    "createdAt": "2025-01-02T03:04:05.000000",
    "updatedAt": "2025-01-02T03:04:05.000000",
    "deletedAt": null
  }
]`
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewCatalogRepository(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got[0].EnrichStatus != "" {
		t.Errorf("历史记录的状态字段应为空: %q", got[0].EnrichStatus)
	}
	if got[0].Price != 900000 {
		t.Errorf("price = %v", got[0].Price)
	}
}
