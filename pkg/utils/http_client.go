package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewOllamaClient 创建访问本地 Ollama 服务的 resty 客户端
// 它是全系统统一的生成服务请求入口
func NewOllamaClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout). // 单次请求超时，重试由调用方控制
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Sportcat-Go-App/1.0")
}
