// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 文件操作工具，缓存 key 清洗、安全路径拼接、目录创建
//
// 设计原则：
//   - 提供常用的文件和路径操作封装
//   - 安全处理路径遍历和越界拼接
//   - 跨平台兼容
package util
