package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Document {
		doc := domain.NewDocument(id)
		doc.Nodes = []domain.NodeModel{
			{ID: "a", Kind: "task", Label: "A", X: 10, Y: 20, Props: map[string]any{"color": "red"}},
			{ID: "b", Kind: "task", Label: "B", X: 110, Y: 20},
		}
		doc.Edges = []domain.EdgeModel{
			{ID: "e1", Source: domain.AtNode("a", 1), Target: domain.AtNode("b", 3)},
		}
		return doc
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := sample(docID)

		err := store.Save(ctx, docID, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, docID, loaded.ID)
		require.Len(t, loaded.Nodes, 2)
		require.Len(t, loaded.Edges, 1)
		assert.Equal(t, "A", loaded.Nodes[0].Label)
		assert.Equal(t, doc.Edges[0].Target, loaded.Edges[0].Target)
		assert.Equal(t, "red", loaded.Nodes[0].Props["color"])
	})

	t.Run("Save Does Not Alias", func(t *testing.T) {
		doc := sample(docID)
		require.NoError(t, store.Save(ctx, docID, doc))

		doc.Nodes[0].Label = "mutated after save"

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "A", loaded.Nodes[0].Label)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, docID, sample(docID))
		require.NoError(t, err)

		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, sample(id1))
		_ = store.Save(ctx, id2, sample(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
