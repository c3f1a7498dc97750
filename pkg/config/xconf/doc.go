// Package xconf 提供分层缓存的配置加载、校验与热重载，基于 koanf 实现。
//
// # 设计理念
//
// xconf 面向单一配置形态：一个描述缓存实例的 YAML/JSON 文件
// （后端类型、目录或 Redis 地址、两层 TTL、日志级别）。
// 加载路径固定为「默认值 → 文件覆盖 → Validate」，
// 调用方拿到的 *Config 要么完整可用，要么伴随错误。
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 配置监视
//
// Watch 基于 fsnotify 监视配置文件所在目录（而非文件本身，
// 兼容编辑器的原子写入），内置防抖。每次变更重新走完整的
// 加载路径，校验失败时回调收到错误且不替换旧配置。
package xconf
