// Package xbackend 定义两层缓存的持久层后端，并提供文件系统与 Redis 两种实现。
//
// # 设计理念
//
// xtier 只关心「按 key 读写删除原始字节」，不关心字节落在哪里。
// Backend 把这一边界抽成接口：
//
//   - [NewFS]: 缓存目录下一个 key 一个文件（默认实现）
//   - [NewRedis]: 已有 Redis 基础设施时的替代持久层
//
// 后端操作的延迟不受控（磁盘、网络），调用方（xtier）负责按 key 串行化，
// 后端自身不做并发协调，也不做重试——失败直接上抛。
//
// # 错误约定
//
//   - key 不存在：Read/Remove 返回 [ErrNotFound]
//   - key 非法：所有操作返回 [ErrInvalidKey]（包装具体原因）
//   - 其余错误为不可恢复的 I/O 故障，原样包装上抛
//
// # 文件后端的写入原子性
//
// NewFS 的写入先落到同目录下的唯一临时文件，再 rename 到目标名。
// rename 在同一文件系统内是原子的，崩溃不会留下半写的缓存条目，
// 残留的临时文件可安全清理。
package xbackend
