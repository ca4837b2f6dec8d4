package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"sportcat_dev_v1_202608/internal/model"
	"sportcat_dev_v1_202608/internal/repository"
	"sportcat_dev_v1_202608/pkg/utils"
)

// ==================== 配置 ====================

// OllamaConfig 生成服务配置
type OllamaConfig struct {
	BaseURL    string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// ==================== 接口定义 ====================

// Generator 文案生成器接口
// Generate 不向外抛错：重试耗尽后返回默认文案，调用方永远拿得到一对结果
type Generator interface {
	Generate(ctx context.Context, productName string) (description, shortDescription string)
	CheckServer() bool
}

// ==================== 服务 ====================

type OllamaService struct {
	Config  *OllamaConfig
	client  *resty.Client
	logRepo repository.GenCallLogRepository
	runID   string
}

// NewOllamaService 创建生成服务客户端
func NewOllamaService(cfg *OllamaConfig, logRepo repository.GenCallLogRepository) *OllamaService {
	// 固定默认配置
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1:8b"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &OllamaService{
		Config:  cfg,
		client:  utils.NewOllamaClient(cfg.BaseURL, cfg.Timeout),
		logRepo: logRepo,
		runID:   uuid.NewString(),
	}
}

// RunID 当前批次ID（调用日志按批归档）
func (s *OllamaService) RunID() string {
	return s.runID
}

// ==================== 默认文案 ====================

// DefaultDescription 生成失败时的兜底文案，只依赖商品名
// 修复脚本靠逐字节比对识别兜底记录，这里的模板一个字符都不能动
func DefaultDescription(productName string) (string, string) {
	return fmt.Sprintf("Khám phá %s - Sản phẩm thể thao chất lượng cao với thiết kế hiện đại và thoải mái.", productName),
		fmt.Sprintf("%s - Trang phục thể thao chất lượng cao", productName)
}

// IsDefaultDescription 判断一条记录的文案是否还是兜底文案
func IsDefaultDescription(description, shortDescription, productName string) bool {
	defaultDesc, defaultShort := DefaultDescription(productName)
	return description == defaultDesc && shortDescription == defaultShort
}

// ==================== 文案生成 ====================

const promptTemplate = `Tạo một mô tả sản phẩm và mô tả ngắn gọn cho một sản phẩm thuộc bộ sưu tập thể thao trên trang thương mại điện tử. Mô tả cần phải chi tiết, hấp dẫn và tập trung vào các tính năng đặc biệt của sản phẩm thể thao, lợi ích sử dụng, cũng như các ưu điểm về chất lượng và hiệu suất.

Trả về phản hồi theo định dạng JSON sau và không có từ nào khác ngoài định dạng json đó. Ngoài ra ở mô tả sản phẩm sẽ được sử dụng với dạng html và sẽ được sử dụng vào CKEditor sau này. Tối thiểu phải có 300 từ:

{
  "description": "Mô tả chi tiết về sản phẩm thể thao, bao gồm các tính năng nổi bật, lợi ích khi sử dụng, chất liệu, thiết kế và sự phù hợp cho các hoạt động thể thao cụ thể.",
  "short_description": "Mô tả ngắn gọn về sản phẩm thể thao, tập trung vào những tính năng và lợi ích chính."
}

Tên sản phẩm thể thao: %s`

type generateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type generateResp struct {
	Response string `json:"response"`
}

type descriptionPair struct {
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
}

// Generate 为商品名生成(长文案, 短文案)
// 每次尝试的失败都只是可重试失败；重试耗尽后降级为默认文案，不向外抛错
func (s *OllamaService) Generate(ctx context.Context, productName string) (string, string) {
	prompt := fmt.Sprintf(promptTemplate, productName)

	log.Printf("[Ollama] 处理商品: %s", productName)

	var lastErr error
	for attempt := 1; attempt <= s.Config.MaxRetries; attempt++ {
		start := time.Now()
		desc, short, err := s.generateOnce(ctx, prompt)
		duration := time.Since(start)

		if err == nil {
			s.recordCall(ctx, productName, attempt, duration, model.GenCallStatusSuccess, "")
			log.Printf("[Ollama] 生成成功: %s (第 %d 次尝试, 耗时 %v)", productName, attempt, duration)
			return desc, short
		}

		lastErr = err
		s.recordCall(ctx, productName, attempt, duration, model.GenCallStatusFailed, err.Error())
		log.Printf("[Ollama] 第 %d 次尝试失败: %s: %v", attempt, productName, err)

		if attempt < s.Config.MaxRetries {
			log.Printf("[Ollama] %v 后重试...", s.Config.RetryDelay)
			time.Sleep(s.Config.RetryDelay)
		}
	}

	// 重试耗尽，降级为默认文案
	log.Printf("[Ollama] 所有尝试均失败，使用默认文案: %s", productName)
	s.recordCall(ctx, productName, s.Config.MaxRetries, 0, model.GenCallStatusFallback, errMsg(lastErr))
	return DefaultDescription(productName)
}

// generateOnce 单次请求 + 响应校验
func (s *OllamaService) generateOnce(ctx context.Context, prompt string) (string, string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(generateReq{
			Model:  s.Config.Model,
			Prompt: prompt,
			Stream: false,
			Format: "json",
		}).
		Post("/api/generate")
	if err != nil {
		return "", "", fmt.Errorf("请求失败: %v", err)
	}

	if resp.StatusCode() != 200 {
		return "", "", fmt.Errorf("HTTP 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	var result generateResp
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", "", fmt.Errorf("解析响应失败: %v", err)
	}

	responseText := strings.TrimSpace(result.Response)
	if responseText == "" {
		return "", "", fmt.Errorf("响应 response 字段为空")
	}

	// response 字段本身必须是合法 JSON 且两个 key 都在
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		return "", "", fmt.Errorf("解析生成结果失败: %v, raw: %s", err, responseText)
	}
	if _, ok := raw["description"]; !ok {
		return "", "", fmt.Errorf("生成结果缺少 description 字段: %s", responseText)
	}
	if _, ok := raw["short_description"]; !ok {
		return "", "", fmt.Errorf("生成结果缺少 short_description 字段: %s", responseText)
	}

	var pair descriptionPair
	if err := json.Unmarshal([]byte(responseText), &pair); err != nil {
		return "", "", fmt.Errorf("解析生成结果失败: %v, raw: %s", err, responseText)
	}

	return pair.Description, pair.ShortDescription, nil
}

// ==================== 可用性探测 ====================

// CheckServer 探测生成服务是否可达，不重试
func (s *OllamaService) CheckServer() bool {
	resp, err := s.client.R().Get("/api/tags")
	if err != nil {
		return false
	}
	return resp.StatusCode() == 200
}

// ==================== 调用日志 ====================

// recordCall 调用日志落库失败不影响生成结果
func (s *OllamaService) recordCall(ctx context.Context, productName string, attempt int, duration time.Duration, status, errorMsg string) {
	if s.logRepo == nil {
		return
	}

	entry := &model.GenCallLog{
		RunID:       s.runID,
		ProductName: productName,
		ModelName:   s.Config.Model,
		Attempt:     attempt,
		DurationMs:  duration.Milliseconds(),
		Status:      status,
		ErrorMsg:    errorMsg,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Printf("[Ollama] 调用日志写入失败: %v", err)
	}
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
