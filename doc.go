// Package onionping 组装一个经 Tor 隐藏服务互相探测的节点
//
// Node 把配置、身份、组合传输（路由 → TCP/SOCKS5 → DNS → Noise → yamux）、
// 执行器、存活探测与连接驱动器装配成一个 fx 应用，对外只暴露
// Dial / Listen / Poll / NextEvent 与少量查询方法。
//
// # 快速开始
//
//	node, err := onionping.Start(ctx,
//	    onionping.WithProxy("127.0.0.1:9050"),
//	    onionping.WithPing(time.Second, 20*time.Second, true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	if err := node.Dial(config.DefaultOnionAddr); err != nil {
//	    log.Fatal(err) // 地址不在路由表中
//	}
//	for {
//	    ev, err := node.NextEvent(ctx)
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(ev)
//	}
package onionping
