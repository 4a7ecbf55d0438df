package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/dep2p/go-onionping/config"
)

// cliFlags 命令行参数
//
// 命令行参数只覆盖「这次运行」，持久化配置走 -config 指定的 JSON 文件。
type cliFlags struct {
	mode       string
	configFile string
	identity   string
	proxy      string
	addr       string
	port       uint
	workers    int
	metrics    string

	logFile  string
	logLevel string

	showVersion bool

	// set 记录显式给出的参数名
	set map[string]bool
}

// parseFlags 解析命令行参数
func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("onionping", flag.ContinueOnError)

	fs.StringVar(&f.mode, "mode", modeDialer, "运行模式 (dialer/listener)")
	fs.StringVar(&f.configFile, "config", "", "配置文件路径")
	fs.StringVar(&f.identity, "identity", "", "身份密钥文件路径（不存在时生成）")
	fs.StringVar(&f.proxy, "proxy", "", "Tor SOCKS5 代理地址（默认: 127.0.0.1:9050）")
	fs.StringVar(&f.addr, "addr", config.DefaultOnionAddr, "onion 地址")
	fs.UintVar(&f.port, "port", uint(config.DefaultLocalPort), "onion 地址路由到的本地端口")
	fs.IntVar(&f.workers, "workers", 0, "执行器并发上限（0 = 使用配置）")
	fs.StringVar(&f.metrics, "metrics", "", "/metrics 监听地址")
	fs.StringVar(&f.logFile, "log", "", "日志文件路径（默认输出到 stderr）")
	fs.StringVar(&f.logLevel, "log-level", "info", "日志级别 (debug/info/warn/error)")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")

	fs.Usage = func() { printUsage(fs.Output(), fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("未知参数: %v", fs.Args())
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if f.mode != modeDialer && f.mode != modeListener {
		return nil, fmt.Errorf("无效模式 %q，应为 %s 或 %s", f.mode, modeDialer, modeListener)
	}
	if f.port == 0 || f.port > 65535 {
		return nil, fmt.Errorf("无效端口 %d", f.port)
	}
	return f, nil
}

func (f *cliFlags) isSet(name string) bool {
	return f.set[name]
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "onionping - 经 Tor onion 服务的点对点 ping")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "用法:")
	fmt.Fprintln(w, "  onionping -mode listener [选项]")
	fmt.Fprintln(w, "  onionping -mode dialer -addr /onion3/<地址>:<端口> [选项]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "选项:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "环境变量使用 ONIONPING_ 前缀，例如 ONIONPING_PROXY_ADDR。")
}
