// Package logging 构造服务使用的 zerolog.Logger，并提供请求级 logger 的上下文传递。
//
// 各组件不持有全局 logger，统一通过 zerolog.Ctx(ctx) 取得请求级 logger。
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config 对应配置文件 logging 段。
type Config struct {
	Level  string
	Format string // json / console
	Caller bool
	Output io.Writer
}

// New 按配置创建 logger，空值使用 info + json + stderr。
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Str("service", "bookrec")
	if cfg.Caller {
		l = l.Caller()
	}
	return l.Logger()
}

// ParseLevel 解析日志级别，无法识别时为 info。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewRequestID 生成请求 ID。
func NewRequestID() string {
	return uuid.NewString()
}

type requestIDKey struct{}

// WithRequest 把 request_id 与带该字段的子 logger 挂到 ctx 上，requestID 为空时自动生成。
func WithRequest(ctx context.Context, base zerolog.Logger, requestID string) (context.Context, string) {
	if requestID == "" {
		requestID = NewRequestID()
	}
	l := base.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return l.WithContext(ctx), requestID
}

// RequestID 返回 ctx 上的请求 ID，没有时为空串。
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// HasLogger 判断 ctx 上是否已挂了可用的 logger。
func HasLogger(ctx context.Context) bool {
	l := zerolog.Ctx(ctx)
	return l != zerolog.DefaultContextLogger && l.GetLevel() != zerolog.Disabled
}
