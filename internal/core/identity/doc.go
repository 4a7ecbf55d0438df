// Package identity 实现 onionping 的节点身份
//
// 每个进程一个 Ed25519 密钥对，PeerID 为 protobuf 编码公钥的 sha2-256
// 多哈希（Base58）。身份创建后只读，显式传给升级流程。
//
// # 快速开始
//
//	id, _ := identity.Generate()
//	fmt.Println(id.PeerID())
//
//	// 从文件加载（不存在时生成并保存）
//	id, _ = identity.LoadOrCreate("node.key", true)
//
// # Fx 模块
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    identity.Module(),
//	    fx.Invoke(func(id pkgif.Identity) { ... }),
//	)
package identity
