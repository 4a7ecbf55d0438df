package identity

import "errors"

var (
	// ErrNilPrivateKey 私钥为 nil
	ErrNilPrivateKey = errors.New("private key is nil")

	// ErrInvalidKeySize 无效的密钥大小
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrUnsupportedKeyType 不支持的密钥类型
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrInvalidKeyEncoding 密钥编码无效
	ErrInvalidKeyEncoding = errors.New("invalid key encoding")

	// ErrInvalidPEM 无效的 PEM 数据
	ErrInvalidPEM = errors.New("invalid PEM data")

	// ErrKeyNotFound 密钥文件不存在
	ErrKeyNotFound = errors.New("key not found")
)
