package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-4"
	DefaultMaxTokens = 150
)

// Client 是 OpenAI 兼容的 Chat Completions 客户端，实现 core.KeywordExpander。
//
// 接口：POST {BaseURL}/chat/completions
//   - 请求：{"model": "...", "messages": [...], "max_tokens": N, "temperature": T}
//   - 响应：{"choices": [{"message": {"content": "..."}}]}
//
// 模型回复按行解析为关键词（见 ParseKeywords）。
type Client struct {
	// BaseURL 服务根地址，如 "https://api.openai.com/v1"
	BaseURL string
	// APIKey Bearer 认证
	APIKey string
	// Model 模型名称
	Model string
	// MaxTokens 回复最大 token 数
	MaxTokens int
	// Temperature 采样温度
	Temperature float64
	// MaxKeywords 期望的关键词个数，写入提示词并用于截断
	MaxKeywords int
	// Timeout 单次请求超时
	Timeout time.Duration

	httpClient *http.Client
}

// Option 配置 Client
type Option func(*Client)

// WithBaseURL 设置服务根地址（兼容 OpenAI 协议的自建服务）
func WithBaseURL(u string) Option {
	return func(c *Client) { c.BaseURL = u }
}

// WithModel 设置模型
func WithModel(model string) Option {
	return func(c *Client) { c.Model = model }
}

// WithMaxTokens 设置回复最大 token 数
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.MaxTokens = n }
}

// WithTemperature 设置采样温度
func WithTemperature(t float64) Option {
	return func(c *Client) { c.Temperature = t }
}

// WithMaxKeywords 设置关键词个数
func WithMaxKeywords(n int) Option {
	return func(c *Client) { c.MaxKeywords = n }
}

// WithTimeout 设置请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

// WithHTTPClient 使用自定义 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient 创建客户端。apiKey 为空时返回 INVALID_INPUT，属于启动期配置错误。
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, core.NewDomainError(core.ModuleLLM, core.ErrorCodeInvalidInput, "llm: api key is not configured")
	}
	c := &Client{
		BaseURL:     DefaultBaseURL,
		APIKey:      apiKey,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: 0.7,
		MaxKeywords: DefaultMaxKeywords,
		Timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) prompt(text string) []chatMessage {
	return []chatMessage{
		{
			Role:    "system",
			Content: "You are a librarian who turns reading preferences into search keywords.",
		},
		{
			Role: "user",
			Content: fmt.Sprintf(
				"Analyze the following book preferences and give %d relevant keywords for a book search, one per line, without explanations.\n\nPreferences: %s",
				c.MaxKeywords, text),
		},
	}
}

// ExpandPreferences 调用模型把偏好文本扩展为关键词。
// 网络错误、非 2xx 响应、无法解析的响应都返回 UNAVAILABLE。
func (c *Client) ExpandPreferences(ctx context.Context, text string) ([]string, error) {
	content, err := c.complete(ctx, c.prompt(text))
	if err != nil {
		return nil, err
	}
	return ParseKeywords(content, c.MaxKeywords), nil
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	b, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    messages,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", core.WrapDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "llm: request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", core.WrapDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "llm: read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", core.NewDomainError(core.ModuleLLM, core.ErrorCodeUnavailable,
			fmt.Sprintf("llm: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", core.WrapDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "llm: decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", core.NewDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "llm: response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

var _ core.KeywordExpander = (*Client)(nil)
