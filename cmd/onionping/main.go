// Package main 提供 onionping 命令行入口
//
// 两种模式：
//
//	onionping -mode listener -port 7777      # 在 onion 地址对应的本地端口上监听并应答 ping
//	onionping -mode dialer -addr /onion3/... # 经 Tor 代理拨号并周期性 ping
//
// 每个事件打印一行到标准输出。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpillora/backoff"

	onionping "github.com/dep2p/go-onionping"
	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("onionping/cmd")

// 运行模式
const (
	modeDialer   = "dialer"
	modeListener = "listener"
)

func main() {
	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(2)
	}
	if f.showVersion {
		fmt.Println(onionping.VersionInfo())
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(f *cliFlags) error {
	closeLog, err := setupLogging(f)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := buildConfig(f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📦 %s\n", onionping.VersionInfo())
	logger.Info("启动 onionping", "mode", f.mode, "addr", f.addr, "version", onionping.Version)

	switch f.mode {
	case modeListener:
		return runListener(ctx, cfg, f.addr)
	default:
		return runDialer(ctx, cfg, f.addr)
	}
}

// setupLogging 按 -log / -log-level 设置全局日志
func setupLogging(f *cliFlags) (func(), error) {
	level, err := log.ParseLevel(f.logLevel)
	if err != nil {
		return nil, err
	}
	if f.logFile == "" {
		log.SetLevel(level)
		return func() {}, nil
	}

	file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	log.SetOutputWithLevel(file, level)
	return func() { _ = file.Close() }, nil
}

// runListener 监听 onion 地址，直到收到退出信号
func runListener(ctx context.Context, cfg *config.Config, addr string) error {
	node, err := onionping.Start(ctx, onionping.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	fmt.Printf("节点 ID: %s\n", node.ID())
	if err := node.Listen(addr); err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	fmt.Println("节点已启动，按 Ctrl+C 退出")

	_, err = drain(ctx, node)
	return err
}

// runDialer 拨号并持续 ping，连接失败或断开后按退避重拨
//
// 事件流终止后不会重新激活，所以每次重拨使用新的节点实例。
func runDialer(ctx context.Context, cfg *config.Config, addr string) error {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		established, err := dialOnce(ctx, cfg, addr)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if established {
			b.Reset()
		}

		d := b.Duration()
		fmt.Printf("将在 %s 后重拨 (第 %d 次)\n", d.Round(time.Millisecond), int(b.Attempt()))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d):
		}
	}
}

// dialOnce 启动一个节点拨号一次，返回期间是否建立过连接
//
// 同步失败（如地址不可路由）作为错误返回，不再重试。
func dialOnce(ctx context.Context, cfg *config.Config, addr string) (bool, error) {
	node, err := onionping.Start(ctx, onionping.WithConfig(cfg))
	if err != nil {
		return false, fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	if err := node.Dial(addr); err != nil {
		return false, fmt.Errorf("拨号失败: %w", err)
	}
	return drain(ctx, node)
}

// drain 打印事件直到事件流终止或 ctx 取消
func drain(ctx context.Context, node *onionping.Node) (bool, error) {
	established := false
	for {
		ev, err := node.NextEvent(ctx)
		if err != nil {
			if errors.Is(err, onionping.ErrExhausted) || ctx.Err() != nil {
				return established, nil
			}
			return established, err
		}
		if ev.Type == types.EventConnectionEstablished {
			established = true
		}
		fmt.Println(formatEvent(ev))
	}
}
