// tierctl 是分层缓存的命令行客户端。
//
// 用法:
//
//	tierctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径 (默认: /etc/tiercache/config.yaml)
//	-t, --timeout  操作超时时间 (默认: 10s)
//
// 命令:
//
//	set <key> [value]   写入条目；省略 value 或传 "-" 时从 stdin 读取
//	get <key>           读取条目并输出到 stdout
//	rm <key>            删除后端条目
//	validate            校验配置文件
//	help                显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功（get 命令: 条目存在）
//	1: 命令执行失败（get 命令: 条目不存在）
//	2: 参数错误（缺少 key、未知命令、配置文件非法等）
//
// 示例:
//
//	tierctl -c ./config.yaml set user/1 alice
//	echo -n alice | tierctl -c ./config.yaml set user/1 -
//	tierctl -c ./config.yaml get user/1
//	tierctl -c ./config.yaml validate
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultConfigPath 默认配置文件路径。
const defaultConfigPath = "/etc/tiercache/config.yaml"

// defaultTimeout 默认操作超时时间。
const defaultTimeout = 10 * time.Second

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "tierctl",
		Usage:   "分层缓存命令行客户端",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				Value:   defaultConfigPath,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "操作超时时间",
				Value:   defaultTimeout,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一处理退出码映射，
		// 确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	app := createApp()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// CLI 框架产生的参数错误（如未知 flag、未知命令）也返回退出码 2。
		if isCLIUsageError(err) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}

// isCLIUsageError 判断是否为 CLI 框架产生的参数类错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "flag provided but not defined") ||
		strings.Contains(msg, "No help topic")
}
