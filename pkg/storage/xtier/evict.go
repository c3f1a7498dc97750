package xtier

import (
	"context"
	"errors"
	"time"

	"github.com/omeyang/tiercache/pkg/storage/xbackend"
)

// 淘汰调度：每个 (key, 层) 至多持有一个待执行的延迟动作。
// 重排 = 取消旧定时器 + 以新代号排一个新的。定时器的 Stop 与回调
// 执行存在竞态窗口，因此回调里以代号为准：代号不匹配说明这次触发
// 已被后来的访问作废。

// armMemoryLocked 重排内存层淘汰到「现在 + memoryTTL」。
// 调用前提：持有 sh.mu。
func (c *cacheImpl) armMemoryLocked(sh *tierShard, s *slot, key string) {
	if c.closed.Load() {
		return
	}
	s.memGen++
	gen := s.memGen
	if s.memTimer != nil && s.memTimer.Stop() {
		c.wg.Done()
	}
	c.wg.Add(1)
	s.memTimer = time.AfterFunc(c.opts.memoryTTL, func() {
		defer c.wg.Done()
		c.expireMemory(sh, s, key, gen)
	})
}

// armFileLocked 重排持久层淘汰到「现在 + fileTTL」。
// 调用前提：持有 sh.mu。
func (c *cacheImpl) armFileLocked(sh *tierShard, s *slot, key string) {
	if c.closed.Load() {
		return
	}
	s.fileGen++
	gen := s.fileGen
	if s.fileTimer != nil && s.fileTimer.Stop() {
		c.wg.Done()
	}
	c.wg.Add(1)
	s.fileTimer = time.AfterFunc(c.opts.fileTTL, func() {
		defer c.wg.Done()
		c.expireFile(sh, s, key, gen)
	})
}

// expireMemory 内存层淘汰动作：清除内存值并通知观察者。
func (c *cacheImpl) expireMemory(sh *tierShard, s *slot, key string, gen uint64) {
	sh.mu.Lock()
	if c.closed.Load() || gen != s.memGen || !s.hasValue {
		sh.mu.Unlock()
		return
	}
	v := s.value
	s.value, s.hasValue = nil, false
	s.memTimer = nil
	sh.mu.Unlock()

	c.metrics.memoryEviction(context.Background())
	// 值已从槽上摘下；观察者里再 Get 会落到持久层。
	if c.opts.onMemoryRemove != nil {
		c.opts.onMemoryRemove(key, v)
	}
}

// expireFile 持久层淘汰动作：占住 key 后删除后端条目。
//
// key 忙（在途读/写）时本次触发整体跳过且不重排——后续任何访问都会
// 重新武装定时器，没有访问的条目下一次被排到时再清。
func (c *cacheImpl) expireFile(sh *tierShard, s *slot, key string, gen uint64) {
	sh.mu.Lock()
	if c.closed.Load() || gen != s.fileGen {
		sh.mu.Unlock()
		return
	}
	select {
	case s.ch <- struct{}{}:
	default:
		sh.mu.Unlock()
		return
	}
	s.fileTimer = nil
	sh.mu.Unlock()

	c.removeBackendEntry(key)

	// 删除期间排队的写入照常排空，随后归还操作权。
	c.runWrites(sh, s, key, nil, false)
}

// removeBackendEntry 删除 key 的后端条目，按需先读回内容交给观察者。
// 调用前提：已持有 key 的操作权。
func (c *cacheImpl) removeBackendEntry(key string) {
	ctx := context.Background()

	if c.opts.onFileRemove != nil {
		content, err := c.backend.Read(ctx, key)
		switch {
		case err == nil:
			c.opts.onFileRemove(key, content)
		case errors.Is(err, xbackend.ErrNotFound):
			// 条目已不存在，无事可做。
			return
		default:
			c.reportIOError(key, "read before evict", err)
			return
		}
	}

	if err := c.backend.Remove(ctx, key); err != nil && !errors.Is(err, xbackend.ErrNotFound) {
		c.reportIOError(key, "evict remove", err)
		return
	}
	c.metrics.fileEviction(ctx)
}
