package config

import "fmt"

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyType 密钥类型，目前只支持 Ed25519
	KeyType string `json:"key_type"`

	// KeyFile 私钥文件路径，为空时每次启动生成新身份
	KeyFile string `json:"key_file,omitempty"`

	// AutoGenerate 密钥文件不存在时生成并写入
	AutoGenerate bool `json:"auto_generate"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		KeyType:      "Ed25519",
		AutoGenerate: true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.KeyType != "Ed25519" {
		return fmt.Errorf("%w: %q", ErrInvalidKeyType, c.KeyType)
	}
	return nil
}
