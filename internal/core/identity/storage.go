package identity

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dep2p/go-onionping/pkg/lib/log"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

var logger = log.Logger("core/identity")

const pemTypePrivateKey = "ONIONPING PRIVATE KEY"

// SavePrivateKey 以 PEM 格式保存私钥（权限 0600，原子写）
func SavePrivateKey(priv pkgif.PrivateKey, path string) error {
	b, err := MarshalPrivateKey(priv)
	if err != nil {
		return err
	}
	data := pem.EncodeToMemory(&pem.Block{Type: pemTypePrivateKey, Bytes: b})
	return atomicWriteFile(path, data, 0600)
}

// LoadPrivateKey 从 PEM 文件加载私钥
func LoadPrivateKey(path string) (pkgif.PrivateKey, error) {
	data, err := os.ReadFile(path) //nolint:gosec // 用户指定的密钥路径
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemTypePrivateKey {
		return nil, ErrInvalidPEM
	}
	return UnmarshalPrivateKey(block.Bytes)
}

// LoadOrCreate 从文件加载身份
//
// 文件不存在且 autoGenerate 为 true 时生成新身份并保存。
func LoadOrCreate(path string, autoGenerate bool) (*Identity, error) {
	priv, err := LoadPrivateKey(path)
	switch {
	case err == nil:
		return New(priv)
	case errors.Is(err, ErrKeyNotFound) && autoGenerate:
		id, err := Generate()
		if err != nil {
			return nil, err
		}
		if err := SavePrivateKey(id.PrivateKey(), path); err != nil {
			return nil, fmt.Errorf("保存身份失败: %w", err)
		}
		logger.Info("已生成新身份", "peerID", id.PeerID().ShortString(), "path", path)
		return id, nil
	default:
		return nil, fmt.Errorf("加载身份失败: %w", err)
	}
}

// atomicWriteFile 临时文件 + rename，失败时目标文件保持不变
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename 失败: %w", err)
	}
	ok = true
	return nil
}
