// Package xfile 提供缓存 key 与文件路径的安全工具。
//
// 缓存以「一个 key 对应一个文件」的方式落盘，key 直接参与路径拼接，
// 因此必须在进入文件系统之前完成格式净化与目录约束：
//
//   - [SanitizeKey]: 校验并规范化 key（拒绝空值、空字节、绝对路径、
//     路径穿越、目录形式等）
//   - [SafeJoin]: 将 key 拼接到缓存基准目录，并验证结果不会逃逸
//   - [EnsureDir] / [EnsureParent]: 创建缓存目录结构
//
// # 安全边界
//
// 本包只做路径层面的净化与约束，不解析符号链接，也不提供原子化的
// 文件访问。缓存目录应位于可信位置；对抗性场景需要配合操作系统级
// 的目录权限控制。
package xfile
