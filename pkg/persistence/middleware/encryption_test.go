package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/persistence/middleware"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.DocumentStore, cfg middleware.EncryptionConfig) ports.DocumentStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func secretDocument(id, secret string) *domain.Document {
	doc := domain.NewDocument(id)
	doc.Nodes = []domain.NodeModel{{ID: "vault", Label: "Vault", Props: map[string]any{"secret": secret}}}
	return doc
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunDocumentStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "doc", secretDocument("doc", "my-secret-sauce")))

	// The underlying store only holds the envelope.
	stored, err := underlying.Load(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, stored.Nodes, 1)
	assert.Equal(t, middleware.SealedNodeID, stored.Nodes[0].ID)
	assert.NotContains(t, stored.Nodes[0].Props, "secret")
	assert.Empty(t, stored.Edges)

	loaded, err := secure.Load(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "my-secret-sauce", loaded.Nodes[0].Props["secret"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, secureOld.Save(ctx, "doc", secretDocument("doc", "encrypted-with-old-key")))

	secureNew := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := secureNew.Load(ctx, "doc")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "encrypted-with-old-key", loaded.Nodes[0].Props["secret"])

	// Saving again seals with the new key only.
	require.NoError(t, secureNew.Save(ctx, "doc", secretDocument("doc", "encrypted-with-new-key")))
	_, err = secureOld.Load(ctx, "doc")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainDocuments(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", secretDocument("plain", "x")))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Load(ctx, "plain")
	assert.ErrorContains(t, err, "missing its encrypted envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
