// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xtier: 两层 key 寻址缓存，内存层 + 持久层，按访问防抖淘汰
//   - xbackend: 持久层后端抽象，内置文件系统与 Redis 实现
//
// 设计原则：
//   - 提供统一的接口抽象，支持多种存储后端
//   - 内置可观测性（指标、日志）
//   - 每 key 访问串行化，读合并、写合并
package storage
