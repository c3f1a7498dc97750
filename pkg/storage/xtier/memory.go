package xtier

// 内存层的簿记：值本体挂在缓存槽上（coordinator.go），这里提供
// 跨分片的快照视图。

func (c *cacheImpl) Len() int {
	n := 0
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.Lock()
		for _, s := range sh.slots {
			if s.hasValue {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

func (c *cacheImpl) Keys() []string {
	keys := make([]string, 0, len(c.shards))
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.Lock()
		for k, s := range sh.slots {
			if s.hasValue {
				keys = append(keys, k)
			}
		}
		sh.mu.Unlock()
	}
	return keys
}
