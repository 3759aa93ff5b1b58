package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/metrics"
)

// BreakerSettings 控制熔断器行为。
type BreakerSettings struct {
	// MaxRequests 半开状态允许通过的请求数
	MaxRequests uint32
	// Interval 闭合状态下计数清零的周期
	Interval time.Duration
	// Timeout 打开状态持续多久后进入半开
	Timeout time.Duration
	// MinRequests 触发熔断前的最少请求数
	MinRequests uint32
	// FailureRatio 失败率达到该值时熔断
	FailureRatio float64
}

// DefaultBreakerSettings 返回默认熔断设置。
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// BreakerExpander 在任意 KeywordExpander 外包一层熔断器：
// 上游持续失败时快速失败，不再占用请求的超时预算。
type BreakerExpander struct {
	next core.KeywordExpander
	cb   *gobreaker.CircuitBreaker[[]string]
	name string
}

// NewBreakerExpander 创建带熔断的扩展器，状态变化写日志与 bookrec_circuit_breaker_state。
func NewBreakerExpander(name string, next core.KeywordExpander, st BreakerSettings, logger zerolog.Logger) *BreakerExpander {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < st.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= st.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return &BreakerExpander{next: next, cb: cb, name: name}
}

func (b *BreakerExpander) ExpandPreferences(ctx context.Context, text string) ([]string, error) {
	kws, err := b.cb.Execute(func() ([]string, error) {
		return b.next.ExpandPreferences(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, core.WrapDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "llm: circuit "+b.name+" rejected request", err)
	}
	return kws, err
}

// State 返回熔断器当前状态（closed / half-open / open）。
func (b *BreakerExpander) State() string {
	return b.cb.State().String()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Disabled 是未配置 LLM 时使用的扩展器，总是返回 UNAVAILABLE。
type Disabled struct{}

func (Disabled) ExpandPreferences(context.Context, string) ([]string, error) {
	return nil, core.NewDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "llm: keyword expansion is disabled")
}

var (
	_ core.KeywordExpander = (*BreakerExpander)(nil)
	_ core.KeywordExpander = Disabled{}
)
