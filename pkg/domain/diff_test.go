package domain_test

import (
	"testing"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDiffDocuments(t *testing.T) {
	base := func() *domain.Document {
		doc := domain.NewDocument("doc-1")
		doc.Nodes = []domain.NodeModel{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}
		doc.Edges = []domain.EdgeModel{{ID: "e1", Source: domain.AtNode("a", 0), Target: domain.AtNode("b", 2)}}
		return doc
	}

	tests := []struct {
		name   string
		old    *domain.Document
		mutate func(*domain.Document)
		want   *domain.DocumentDiff
	}{
		{
			name:   "Initial Load (Old is Nil)",
			old:    nil,
			mutate: func(*domain.Document) {},
			want: &domain.DocumentDiff{
				DocumentID: "doc-1",
				Added:      []string{"a", "b", "e1"},
				Viewport:   &domain.Viewport{Zoom: 1},
			},
		},
		{
			name:   "No Changes",
			old:    base(),
			mutate: func(*domain.Document) {},
			want:   &domain.DocumentDiff{DocumentID: "doc-1"},
		},
		{
			name: "Label Update And Removal",
			old:  base(),
			mutate: func(d *domain.Document) {
				d.Nodes[0].Label = "A2"
				d.Edges = nil
			},
			want: &domain.DocumentDiff{
				DocumentID: "doc-1",
				Removed:    []string{"e1"},
				Updated:    []string{"a"},
			},
		},
		{
			name: "Zoom Change",
			old:  base(),
			mutate: func(d *domain.Document) {
				d.Viewport.Zoom = 1.05
			},
			want: &domain.DocumentDiff{
				DocumentID: "doc-1",
				Viewport:   &domain.Viewport{Zoom: 1.05},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base()
			tt.mutate(next)
			got := domain.DiffDocuments(tt.old, next)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DiffDocuments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDocumentDiff_Empty(t *testing.T) {
	assert.True(t, (*domain.DocumentDiff)(nil).Empty())
	assert.True(t, (&domain.DocumentDiff{DocumentID: "x"}).Empty())
	assert.False(t, (&domain.DocumentDiff{Added: []string{"a"}}).Empty())
}
