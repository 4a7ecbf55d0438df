package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-onionping/config"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// TestIdentity_New 测试创建身份
func TestIdentity_New(t *testing.T) {
	priv, pub, err := GenerateEd25519Key()
	require.NoError(t, err)

	id, err := New(priv)
	require.NoError(t, err)

	assert.False(t, id.PeerID().IsEmpty())
	assert.NoError(t, id.PeerID().Validate())
	assert.True(t, id.PublicKey().Equals(pub))
	assert.True(t, MatchesPeerID(pub, id.PeerID()))

	// PeerID 稳定
	again, err := New(priv)
	require.NoError(t, err)
	assert.Equal(t, id.PeerID(), again.PeerID())

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrNilPrivateKey)
}

// TestIdentity_Sign 测试签名验证
func TestIdentity_Sign(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	sig, err := id.Sign([]byte("hello"))
	require.NoError(t, err)

	ok, err := id.PublicKey().Verify([]byte("hello"), sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = id.PublicKey().Verify([]byte("tampered"), sig)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = id.PublicKey().Verify([]byte("hello"), sig[:10])
	assert.False(t, ok)
}

// TestIdentity_DifferentKeys 不同密钥派生不同 PeerID
func TestIdentity_DifferentKeys(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, a.PeerID(), b.PeerID())
	assert.False(t, MatchesPeerID(a.PublicKey(), b.PeerID()))
}

// TestCodec 测试密钥编码
func TestCodec(t *testing.T) {
	priv, pub, err := GenerateEd25519Key()
	require.NoError(t, err)

	b, err := MarshalPublicKey(pub)
	require.NoError(t, err)
	// type=1 (Ed25519), len=32
	assert.Equal(t, []byte{0x08, 0x01, 0x12, 0x20}, b[:4])

	decoded, err := UnmarshalPublicKey(b)
	require.NoError(t, err)
	assert.True(t, decoded.Equals(pub))

	pb, err := MarshalPrivateKey(priv)
	require.NoError(t, err)
	decodedPriv, err := UnmarshalPrivateKey(pb)
	require.NoError(t, err)
	assert.True(t, decodedPriv.PublicKey().Equals(pub))

	t.Run("invalid", func(t *testing.T) {
		_, err := UnmarshalPublicKey([]byte{0x08})
		assert.ErrorIs(t, err, ErrInvalidKeyEncoding)

		_, err = UnmarshalPublicKey([]byte{0x08, 0x01})
		assert.ErrorIs(t, err, ErrInvalidKeyEncoding)

		_, err = UnmarshalPublicKey(marshalKey(pkgif.KeyTypeRSA, []byte{1, 2, 3}))
		assert.ErrorIs(t, err, ErrUnsupportedKeyType)

		_, err = UnmarshalPublicKey(marshalKey(pkgif.KeyTypeEd25519, []byte{1, 2, 3}))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})
}

// TestLoadOrCreate 测试身份持久化
func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.key")

	_, err := LoadOrCreate(path, false)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	created, err := LoadOrCreate(path, true)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadOrCreate(path, false)
	require.NoError(t, err)
	assert.Equal(t, created.PeerID(), loaded.PeerID())

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	_, err = LoadOrCreate(path, true)
	assert.ErrorIs(t, err, ErrInvalidPEM)
}

// TestModule 测试 Fx 模块
func TestModule(t *testing.T) {
	var got pkgif.Identity
	app := fxtest.New(t,
		Module(),
		fx.Invoke(func(id pkgif.Identity) { got = id }),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, got)
	assert.NotEqual(t, types.EmptyPeerID, got.PeerID())
}

// TestProvideIdentity_KeyFile 测试从配置的密钥文件加载
func TestProvideIdentity_KeyFile(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Identity.KeyFile = filepath.Join(t.TempDir(), "id.key")

	first, err := ProvideIdentity(Params{Config: cfg})
	require.NoError(t, err)
	second, err := ProvideIdentity(Params{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, first.Identity.PeerID(), second.Identity.PeerID())
}
