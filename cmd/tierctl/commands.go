package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/tiercache/pkg/config/xconf"
	"github.com/omeyang/tiercache/pkg/storage/xbackend"
	"github.com/omeyang/tiercache/pkg/storage/xtier"
)

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 表示参数错误，main 输出错误详情并返回退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createSetCommand(),
		createGetCommand(),
		createRemoveCommand(),
		createValidateCommand(),
	}
}

func createSetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "写入条目；省略 value 或传 \"-\" 时从 stdin 读取",
		ArgsUsage: "<key> [value]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 1 {
				return &usageError{msg: "set 需要 <key> 参数"}
			}
			if len(args) > 2 {
				return &usageError{msg: "set 最多接受两个参数"}
			}

			var content []byte
			if len(args) == 2 && args[1] != "-" {
				content = []byte(args[1])
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("读取 stdin 失败: %w", err)
				}
				content = data
			}

			return cmdSet(ctx, cmd.String("config"), cmd.Duration("timeout"), args[0], content)
		},
	}
}

func createGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "读取条目并输出到 stdout",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "get 需要且仅需要 <key> 参数"}
			}
			return cmdGet(ctx, cmd.String("config"), cmd.Duration("timeout"), args[0])
		},
	}
}

func createRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "删除后端条目",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "rm 需要且仅需要 <key> 参数"}
			}
			return cmdRemove(ctx, cmd.String("config"), cmd.Duration("timeout"), args[0])
		},
	}
}

func createValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "校验配置文件",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdValidate(cmd.String("config"))
		},
	}
}

// =============================================================================
// 命令实现
// =============================================================================

// ioErrSink 收集后台 I/O 故障，命令结束时统一检查。
type ioErrSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *ioErrSink) report(_ string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *ioErrSink) first() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[0]
}

// buildBackend 根据配置构建持久层后端。
func buildBackend(cfg *xconf.Config) (xbackend.Backend, error) {
	switch cfg.Backend {
	case xconf.BackendFS:
		return xbackend.NewFS(cfg.Dir)
	case xconf.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		var opts []xbackend.RedisOption
		if cfg.Redis.KeyPrefix != "" {
			opts = append(opts, xbackend.WithRedisKeyPrefix(cfg.Redis.KeyPrefix))
		}
		return xbackend.NewRedis(client, opts...)
	default:
		return nil, fmt.Errorf("未知后端类型 %q", cfg.Backend)
	}
}

// openCache 加载配置并组装缓存实例。
func openCache(cfgPath string) (xtier.Cache, xbackend.Backend, *ioErrSink, error) {
	cfg, err := xconf.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, &usageError{msg: fmt.Sprintf("加载配置失败: %v", err)}
	}

	backend, err := buildBackend(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	sink := &ioErrSink{}
	cache, err := xtier.New(backend,
		xtier.WithMemoryTTL(cfg.MemoryTTL),
		xtier.WithFileTTL(cfg.FileTTL),
		xtier.WithLogger(logger),
		xtier.WithOnIOError(sink.report),
	)
	if err != nil {
		closeErr := backend.Close()
		return nil, nil, nil, errors.Join(err, closeErr)
	}

	return cache, backend, sink, nil
}

func cmdSet(_ context.Context, cfgPath string, _ time.Duration, key string, content []byte) error {
	cache, backend, sink, err := openCache(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	if err := cache.Set(key, content); err != nil {
		_ = cache.Close()
		if errors.Is(err, xbackend.ErrInvalidKey) {
			return &usageError{msg: err.Error()}
		}
		return err
	}

	// Close 会等待异步写入落盘，一次性命令以此保证持久化完成。
	if err := cache.Close(); err != nil {
		return err
	}
	if err := sink.first(); err != nil {
		fmt.Fprintf(os.Stderr, "写入失败: %v\n", err)
		return &exitError{code: 1}
	}
	return nil
}

func cmdGet(ctx context.Context, cfgPath string, timeout time.Duration, key string) error {
	cache, backend, _, err := openCache(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()
	defer func() { _ = cache.Close() }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, found, err := cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, xbackend.ErrInvalidKey) {
			return &usageError{msg: err.Error()}
		}
		return err
	}
	if !found {
		fmt.Fprintf(os.Stderr, "条目不存在: %s\n", key)
		return &exitError{code: 1}
	}

	if _, err := os.Stdout.Write(value); err != nil {
		return fmt.Errorf("输出失败: %w", err)
	}
	return nil
}

func cmdRemove(ctx context.Context, cfgPath string, timeout time.Duration, key string) error {
	cfg, err := xconf.Load(cfgPath)
	if err != nil {
		return &usageError{msg: fmt.Sprintf("加载配置失败: %v", err)}
	}
	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := backend.Remove(ctx, key); err != nil {
		if errors.Is(err, xbackend.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "条目不存在: %s\n", key)
			return &exitError{code: 1}
		}
		if errors.Is(err, xbackend.ErrInvalidKey) {
			return &usageError{msg: err.Error()}
		}
		return err
	}
	return nil
}

func cmdValidate(cfgPath string) error {
	cfg, err := xconf.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置非法: %v\n", err)
		return &exitError{code: 2}
	}

	fmt.Printf("配置有效: backend=%s memory_ttl=%v file_ttl=%v\n",
		cfg.Backend, cfg.MemoryTTL, cfg.FileTTL)
	return nil
}
