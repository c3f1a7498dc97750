package xtier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/omeyang/tiercache/pkg/storage/xbackend"
)

// cacheImpl 实现 Cache 接口。
type cacheImpl struct {
	backend xbackend.Backend
	opts    *options
	metrics *tierMetrics

	shards []tierShard
	mask   uint64

	// 合并并发的未命中读取：同一 key 同时只有一次后端读穿。
	group singleflight.Group

	closed atomic.Bool
	done   chan struct{}
	// 跟踪后台写入 worker 与已武装的淘汰定时器，Close 时等待归零。
	wg sync.WaitGroup
}

// readResult 是读穿的共享结果。
type readResult struct {
	value []byte
	found bool
}

func newCacheImpl(backend xbackend.Backend, o *options, metrics *tierMetrics) *cacheImpl {
	c := &cacheImpl{
		backend: backend,
		opts:    o,
		metrics: metrics,
		done:    make(chan struct{}),
	}
	c.shards, c.mask = newShards(o.shardCount)
	return c
}

// =============================================================================
// Set
// =============================================================================

func (c *cacheImpl) Set(key string, content []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.backend.ValidateKey(key); err != nil {
		return err
	}

	// 观察者先于一切 I/O，无条件触发。
	if c.opts.onSet != nil {
		c.opts.onSet(key, content)
	}

	sh, s := c.slotFor(key)

	sh.mu.Lock()
	select {
	case s.ch <- struct{}{}:
		// key 空闲，取得操作权。与内存值字节相同的重复写入直接跳过：
		// 不产生 I/O，也不刷新 TTL。
		if s.hasValue && bytes.Equal(s.value, content) {
			<-s.ch
			sh.mu.Unlock()
			return nil
		}
		sh.mu.Unlock()

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.runWrites(sh, s, key, content, true)
		}()
	default:
		// key 忙：进入待写槽，覆盖之前排队的值。
		s.pending = content
		s.hasPending = true
		sh.mu.Unlock()
	}
	return nil
}

// performWrite 执行一次后端写入及其前置读取，并在成功后刷新两层状态。
// 调用前提：已持有 key 的操作权。
func (c *cacheImpl) performWrite(sh *tierShard, s *slot, key string, content []byte) {
	ctx := context.Background()

	sh.mu.Lock()
	needRead := !s.hasValue
	sh.mu.Unlock()

	// 内存层没有已知值时先读一次后端：每次层间转换都经过已知内存
	// 状态，随后的写入会覆盖它。
	if needRead {
		data, err := c.backend.Read(ctx, key)
		switch {
		case err == nil:
			c.metrics.backendRead(ctx)
			sh.mu.Lock()
			s.value, s.hasValue = data, true
			sh.mu.Unlock()
		case errors.Is(err, xbackend.ErrNotFound):
			// 首次写入，后端尚无条目。
		default:
			c.reportIOError(key, "read before write", err)
			return
		}
	}

	if err := c.backend.Write(ctx, key, content); err != nil {
		c.reportIOError(key, "write", err)
		return
	}
	c.metrics.backendWrite(ctx)

	sh.mu.Lock()
	s.value, s.hasValue = content, true
	c.armMemoryLocked(sh, s, key)
	c.armFileLocked(sh, s, key)
	sh.mu.Unlock()
}

// =============================================================================
// Get
// =============================================================================

func (c *cacheImpl) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if ctx == nil {
		panic("xtier: nil Context")
	}
	if c.closed.Load() {
		return nil, false, ErrClosed
	}
	if err := c.backend.ValidateKey(key); err != nil {
		return nil, false, err
	}

	sh, s := c.slotFor(key)

	// 内存命中：立即返回并刷新内存层 TTL。纯内存命中不触碰持久层，
	// 其 TTL 保持原样。
	sh.mu.Lock()
	if s.hasValue {
		v := s.value
		c.armMemoryLocked(sh, s, key)
		sh.mu.Unlock()
		c.metrics.hit(ctx)
		return v, true, nil
	}
	sh.mu.Unlock()
	c.metrics.miss(ctx)

	// 未命中：合并到该 key 的在途读穿。读穿使用独立的生命周期，
	// 某个调用方取消不影响其他等待者。
	ch := c.group.DoChan(key, func() (any, error) {
		return c.readThrough(sh, s, key)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		r, ok := res.Val.(readResult)
		if !ok {
			return nil, false, errors.New("xtier: unexpected result type from singleflight")
		}
		return r.value, r.found, nil
	}
}

// readThrough 执行一次读穿：取得 key 操作权（排在在途写入之后），
// 再次检查内存层，必要时读后端并回填。
func (c *cacheImpl) readThrough(sh *tierShard, s *slot, key string) (any, error) {
	select {
	case s.ch <- struct{}{}:
	case <-c.done:
		return nil, ErrClosed
	}

	// double-check：等待操作权期间，在途写入可能已经填好内存层。
	sh.mu.Lock()
	if s.hasValue {
		v := s.value
		c.armMemoryLocked(sh, s, key)
		sh.mu.Unlock()
		c.runWrites(sh, s, key, nil, false)
		return readResult{value: v, found: true}, nil
	}
	sh.mu.Unlock()

	data, err := c.backend.Read(context.Background(), key)
	switch {
	case err == nil:
		c.metrics.backendRead(context.Background())
		sh.mu.Lock()
		s.value, s.hasValue = data, true
		c.armMemoryLocked(sh, s, key)
		c.armFileLocked(sh, s, key)
		sh.mu.Unlock()
		c.runWrites(sh, s, key, nil, false)
		return readResult{value: data, found: true}, nil
	case errors.Is(err, xbackend.ErrNotFound):
		c.runWrites(sh, s, key, nil, false)
		return readResult{}, nil
	default:
		// 读失败对 Get 降级为不存在：不回填内存层，只留日志。
		c.opts.logger.Warn("tiercache: backend read failed",
			slog.String("key", key), slog.Any("error", err))
		c.metrics.ioError(context.Background())
		c.runWrites(sh, s, key, nil, false)
		return readResult{}, nil
	}
}

// =============================================================================
// 生命周期
// =============================================================================

func (c *cacheImpl) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	// 唤醒所有阻塞在操作权上的读穿。
	close(c.done)

	// 解除全部淘汰定时器。Stop 成功表示回调不会再执行，由这里补上
	// 对应的 wg.Done；Stop 失败表示回调已经/正在执行，回调自会 Done
	// 并在看到 closed 后立即放弃。
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.Lock()
		for _, s := range sh.slots {
			if s.memTimer != nil && s.memTimer.Stop() {
				c.wg.Done()
			}
			s.memTimer = nil
			s.memGen++
			if s.fileTimer != nil && s.fileTimer.Stop() {
				c.wg.Done()
			}
			s.fileTimer = nil
			s.fileGen++
		}
		sh.mu.Unlock()
	}

	c.wg.Wait()
	return nil
}

// reportIOError 处理后台 I/O 故障：Set 的异步写入、淘汰期间的读/删。
// 没有重试策略，也没有调用方可见的错误通道——配置了回调就交给回调，
// 否则 panic 使故障上升为进程级。
func (c *cacheImpl) reportIOError(key, op string, err error) {
	c.metrics.ioError(context.Background())
	wrapped := fmt.Errorf("xtier: %s %q: %w", op, key, err)
	c.opts.logger.Error("tiercache: background io failed",
		slog.String("key", key), slog.String("op", op), slog.Any("error", err))
	if c.opts.onIOError != nil {
		c.opts.onIOError(key, wrapped)
		return
	}
	panic(wrapped)
}

// 编译期接口检查。
var _ Cache = (*cacheImpl)(nil)
