package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sportcat_dev_v1_202608/internal/model"
	"sportcat_dev_v1_202608/internal/repository"
	"sportcat_dev_v1_202608/internal/service"
)

// ==================== 假 Ollama 服务 ====================

// fakeOllama 可开关的生成服务：healthy=false 时 /api/generate 一律 500
type fakeOllama struct {
	healthy  atomic.Bool
	requests atomic.Int64
	server   *httptest.Server
}

func newFakeOllama() *fakeOllama {
	f := &fakeOllama{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/generate":
			f.requests.Add(1)
			if !f.healthy.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			var req struct {
				Prompt string `json:"prompt"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)

			inner, _ := json.Marshal(map[string]string{
				"description":       "<p>Mô tả sinh bởi mô hình</p>",
				"short_description": "Mô tả ngắn sinh bởi mô hình",
			})
			_ = json.NewEncoder(w).Encode(map[string]string{"response": string(inner)})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return f
}

// ==================== 测试辅助函数 ====================

func newGenLogRepo(t *testing.T) repository.GenCallLogRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.GenCallLog{}))
	return repository.NewGenCallLogRepository(db)
}

func newOllama(t *testing.T, baseURL string, logRepo repository.GenCallLogRepository) *service.OllamaService {
	return service.NewOllamaService(&service.OllamaConfig{
		BaseURL:    baseURL,
		RetryDelay: time.Millisecond,
		Timeout:    2 * time.Second,
	}, logRepo)
}

const integrationCSV = `Product Name,SKU,Category,Price,Image URLs,Sizes,Colors
Giày Nike Mercurial,GN-01,giay-nike,"1,234,567₫",https://cdn.example.com/a.jpg,"39,40,41",
Áo bóng đá bản Fan,AF-01,ao-bong-da-ban-fan,"300,000₫",https://cdn.example.com/b.jpg,,
`

// ==================== 全链路测试 ====================

// TestConvertThenRepair 覆盖完整生命周期：
// 生成服务挂着的时候转换 -> 全部落兜底文案 -> 服务恢复后修复 -> 全部补齐
func TestConvertThenRepair(t *testing.T) {
	ollama := newFakeOllama()
	defer ollama.server.Close()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "product_data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(integrationCSV), 0644))

	catalogRepo := repository.NewCatalogRepository(filepath.Join(dir, "products.json"))
	logRepo := newGenLogRepo(t)
	gen := newOllama(t, ollama.server.URL, logRepo)

	// -------- 阶段一：服务故障下转换 --------
	converter := service.NewConverterService(&service.ConverterConfig{CSVFile: csvPath}, gen, catalogRepo)
	require.NoError(t, converter.Run(context.Background()))

	// 每行 3 次重试
	assert.EqualValues(t, 6, ollama.requests.Load())

	products, err := catalogRepo.Load()
	require.NoError(t, err)
	require.Len(t, products, 2)

	for _, p := range products {
		assert.True(t, service.IsDefaultDescription(p.Description, p.ShortDescription, p.ProductName),
			"服务故障时 %s 应落兜底文案", p.ProductSKU)
		assert.Equal(t, model.EnrichStatusFallback, p.EnrichStatus)
	}
	assert.Equal(t, model.ProductTypeConfigurable, products[0].ProductType)
	assert.Equal(t, 1234567.0, products[0].Price)

	// 调用日志也应记下兜底批次
	stats, err := logRepo.GetRunStats(context.Background(), gen.RunID())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.FallbackCount)
	assert.EqualValues(t, 6, stats.FailedCount)

	// -------- 阶段二：服务恢复后修复 --------
	ollama.healthy.Store(true)

	repairSvc := service.NewRepairService(
		&service.RepairConfig{FailedFile: filepath.Join(dir, "failed.json")},
		gen,
		catalogRepo,
	)
	result, err := repairSvc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 2, result.Flagged)
	assert.Equal(t, 2, result.Updated)
	assert.Empty(t, result.Failed)

	repaired, err := catalogRepo.Load()
	require.NoError(t, err)
	for _, p := range repaired {
		assert.Equal(t, "<p>Mô tả sinh bởi mô hình</p>", p.Description)
		assert.Equal(t, model.EnrichStatusGenerated, p.EnrichStatus)
	}

	// 修复前有备份
	backups, _ := filepath.Glob(filepath.Join(dir, "products.json.backup.*"))
	assert.NotEmpty(t, backups)

	// 没有失败就不写失败清单
	_, statErr := os.Stat(filepath.Join(dir, "failed.json"))
	assert.True(t, os.IsNotExist(statErr))

	// -------- 阶段三：再跑一次应无事可做 --------
	result, err = repairSvc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Flagged)
}
