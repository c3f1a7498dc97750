package xtier

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// slot 是一个 key 的缓存槽，承载两层状态与访问协调。
//
// ch 是 size=1 的 channel，用作该 key 的后端操作互斥量：
//   - 发送成功 = 取得操作权（key 空闲 → 忙）
//   - 发送阻塞 = key 忙
//   - 接收 = 归还操作权
//
// 其余字段由所属分片的 mu 保护。槽惰性创建且不回收：淘汰清除的是
// 值与后端条目，槽本身与缓存同生命周期。
type slot struct {
	ch chan struct{}

	// 待写槽：key 忙期间到达的最新 Set 值，后到者覆盖先到者。
	pending    []byte
	hasPending bool

	// 内存层。
	value    []byte
	hasValue bool

	// 淘汰定时器与代号。代号在每次重排和 Close 时递增，
	// 迟到的定时器回调发现代号不匹配即放弃（Stop 有竞态窗口）。
	memGen    uint64
	memTimer  *time.Timer
	fileGen   uint64
	fileTimer *time.Timer
}

type tierShard struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func newShards(count int) ([]tierShard, uint64) {
	shards := make([]tierShard, count)
	for i := range shards {
		shards[i].slots = make(map[string]*slot)
	}
	// count 已验证为 2 的幂，int → uint64 为安全宽化。
	return shards, uint64(count - 1)
}

func (c *cacheImpl) shardFor(key string) *tierShard {
	h := xxhash.Sum64String(key)
	return &c.shards[h&c.mask]
}

// slotFor 获取或创建 key 的缓存槽。
func (c *cacheImpl) slotFor(key string) (*tierShard, *slot) {
	sh := c.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		sh.slots[key] = s
	}
	return sh, s
}

// runWrites 在已持有 key 操作权的前提下执行（可选的）一次写入，
// 随后逐个排空待写槽，最后归还操作权。
//
// 这是「结束访问」的唯一路径：排队写入永远一次一个地排空，且只应用
// 最新值——排空某个值期间如果又有新 Set 排队，循环会继续消化它。
func (c *cacheImpl) runWrites(sh *tierShard, s *slot, key string, content []byte, doWrite bool) {
	for {
		if doWrite {
			c.performWrite(sh, s, key, content)
		}

		sh.mu.Lock()
		if s.hasPending {
			content = s.pending
			s.pending, s.hasPending = nil, false
			sh.mu.Unlock()
			doWrite = true
			continue
		}
		// 此刻无排队写入，归还操作权。接收必然立即成功：token 由本方持有。
		<-s.ch
		sh.mu.Unlock()
		return
	}
}
