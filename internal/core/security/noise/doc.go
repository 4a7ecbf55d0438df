// Package noise 实现 Noise 协议安全传输
//
// 使用 Noise_XX_25519_ChaChaPoly_SHA256：
//
//	-> e                              (发起者发送临时公钥)
//	<- e, ee, s, es, payload          (响应者发送临时公钥、静态公钥、payload)
//	-> s, se, payload                 (发起者发送静态公钥、payload)
//
// payload 包含 Ed25519 身份公钥和对 Noise 静态公钥的签名，
// 将 Curve25519 静态密钥绑定到节点身份：
//
//	identity_key (field 1): MarshalPublicKey(identityPub)
//	identity_sig (field 2): Sign("noise-libp2p-static-key:" + curve25519_static_pubkey)
//
// 握手完成后，每条记录为 2 字节大端长度 + 密文，单条明文不超过 65519 字节。
//
// # 使用示例
//
//	t, err := noise.New(id)
//	sc, err := t.SecureOutbound(ctx, conn, "")
//	remote := sc.RemotePeer()
package noise
