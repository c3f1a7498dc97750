// Package xtier 实现两层 TTL 缓存：进程内内存层 + 慢速持久层（xbackend）。
//
// # 核心协议
//
// 每个 key 对应一个缓存槽，贯穿两个存储层：
//
//   - Set 永远「即发即弃」：观察者回调同步触发，I/O 异步执行。
//     key 空闲时立即开始后端写入；key 忙（有在途后端操作）时，新值
//     进入该 key 唯一的待写槽，后到者覆盖先到者（last-write-wins）。
//   - Get 命中内存层立即返回；未命中时读穿持久层并回填内存层。
//     并发的未命中读取通过 singleflight 合并为一次后端读取。
//   - 每个 key 任意时刻至多有一个后端操作在途（按 key 互斥）。
//
// # TTL 防抖
//
// 内存层与持久层各自独立计时：
//
//   - 每次成功访问某层，取消并重排该层的淘汰动作到「现在 + TTL」
//   - 纯内存命中只刷新内存层 TTL，不影响持久层
//   - 内存层到期：触发 OnMemoryRemove 观察者后清除内存值
//   - 持久层到期：key 忙时本次淘汰整体跳过且不重试（后续访问会重新
//     计时）；空闲时占住 key，可选地读回内容交给 OnFileRemove，再删除
//     后端条目，期间排队的写入在删除完成后继续排空
//
// # 错误模型
//
//   - Get 的读失败降级为「不存在」，只记日志，不打扰调用方
//   - Set 的后台写失败与淘汰期间的读/删失败没有调用方可见的错误通道：
//     配置了 WithOnIOError 时交给回调，否则 panic——没有重试策略，
//     后台持久化失败是进程级故障而非缓存级故障
//
// # 并发与生命周期
//
// 所有方法并发安全。缓存槽惰性创建且与进程同生命周期（淘汰清的是
// 值，不是槽）。Close 拒绝新操作、停止全部定时器并等待在途 worker
// 退出；传入的 Backend 由调用方负责关闭。
package xtier
