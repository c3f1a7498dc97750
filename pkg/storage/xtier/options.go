package xtier

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultMemoryTTL 内存层的默认淘汰防抖间隔。
	DefaultMemoryTTL = 10 * time.Second

	// DefaultFileTTL 持久层的默认淘汰防抖间隔。
	DefaultFileTTL = 10 * time.Minute

	defaultShardCount = 32
	maxShardCount     = 1 << 16 // 65536

	defaultInstrumentationName = "github.com/omeyang/tiercache/xtier"
)

// Option 定义缓存的可选配置。
type Option func(*options)

type options struct {
	memoryTTL  time.Duration
	fileTTL    time.Duration
	shardCount int

	onSet          func(key string, content []byte)
	onMemoryRemove func(key string, value []byte)
	onFileRemove   func(key string, content []byte)
	onIOError      func(key string, err error)

	logger              *slog.Logger
	meterProvider       metric.MeterProvider
	instrumentationName string
}

func defaultOptions() *options {
	return &options{
		memoryTTL:           DefaultMemoryTTL,
		fileTTL:             DefaultFileTTL,
		shardCount:          defaultShardCount,
		logger:              slog.Default(),
		meterProvider:       otel.GetMeterProvider(),
		instrumentationName: defaultInstrumentationName,
	}
}

// WithMemoryTTL 设置内存层淘汰的防抖间隔，默认 10 秒。
// 每次内存层访问都会把淘汰重新排到「现在 + ttl」。
func WithMemoryTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.memoryTTL = ttl
	}
}

// WithFileTTL 设置持久层淘汰的防抖间隔，默认 10 分钟。
func WithFileTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.fileTTL = ttl
	}
}

// WithShardCount 设置缓存槽分片数量。
// n 必须为正整数且为 2 的幂，上限 65536，否则 New 返回错误。默认 32。
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithOnSet 设置写入观察者。
// 每次 Set 调用都会在任何 I/O 之前同步触发一次，包括最终被合并或
// 去重的调用。回调不得阻塞：它在调用方的 goroutine 上执行。
func WithOnSet(fn func(key string, content []byte)) Option {
	return func(o *options) {
		o.onSet = fn
	}
}

// WithOnMemoryRemove 设置内存层淘汰观察者。
// 在内存值因 TTL 到期被清除时触发，携带被淘汰的值。
func WithOnMemoryRemove(fn func(key string, value []byte)) Option {
	return func(o *options) {
		o.onMemoryRemove = fn
	}
}

// WithOnFileRemove 设置持久层淘汰观察者。
// 配置后，淘汰会先从后端读回当前内容并交给回调，然后才删除条目；
// 未配置时直接删除、不做读回。
func WithOnFileRemove(fn func(key string, content []byte)) Option {
	return func(o *options) {
		o.onFileRemove = fn
	}
}

// WithOnIOError 设置后台 I/O 故障回调。
//
// Set 的异步写入失败、淘汰期间的读/删失败都没有调用方可见的错误
// 通道，统一走此回调。未配置时这类失败会在后台 goroutine 上 panic：
// 缓存不做重试，持久化失败属于进程级故障，不应被静默吞掉。
func WithOnIOError(fn func(key string, err error)) Option {
	return func(o *options) {
		o.onIOError = fn
	}
}

// WithLogger 设置自定义 Logger，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeterProvider 设置 OTel MeterProvider，默认使用全局 Provider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		if provider != nil {
			o.meterProvider = provider
		}
	}
}

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.instrumentationName = name
		}
	}
}

func (o *options) validate() error {
	if o.memoryTTL <= 0 {
		return fmt.Errorf("%w: memory ttl %v", ErrInvalidTTL, o.memoryTTL)
	}
	if o.fileTTL <= 0 {
		return fmt.Errorf("%w: file ttl %v", ErrInvalidTTL, o.fileTTL)
	}
	sc := o.shardCount
	if sc <= 0 || sc > maxShardCount || sc&(sc-1) != 0 {
		return fmt.Errorf("%w: must be a positive power of 2 (max %d), got %d",
			ErrInvalidShardCount, maxShardCount, sc)
	}
	return nil
}
