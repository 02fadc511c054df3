package domain

import (
	"reflect"
	"sort"
)

// DocumentDiff represents the changes between two document snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type DocumentDiff struct {
	// DocumentID is always present to identify the target.
	DocumentID string `json:"document_id"`

	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Updated []string `json:"updated,omitempty"`

	Viewport *Viewport `json:"viewport,omitempty"`
}

// Empty reports whether the diff carries no change.
func (d *DocumentDiff) Empty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0 && d.Viewport == nil)
}

// DiffDocuments calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, every item of newDoc is reported as added (initial load).
func DiffDocuments(oldDoc, newDoc *Document) *DocumentDiff {
	if newDoc == nil {
		return nil
	}

	diff := &DocumentDiff{DocumentID: newDoc.ID}

	before := map[string]any{}
	if oldDoc != nil {
		indexItems(before, oldDoc)
	}
	after := map[string]any{}
	indexItems(after, newDoc)

	for id, model := range after {
		prev, ok := before[id]
		switch {
		case !ok:
			diff.Added = append(diff.Added, id)
		case !reflect.DeepEqual(prev, model):
			diff.Updated = append(diff.Updated, id)
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Updated)

	if oldDoc == nil || oldDoc.Viewport != newDoc.Viewport {
		vp := newDoc.Viewport
		diff.Viewport = &vp
	}
	return diff
}

func indexItems(into map[string]any, doc *Document) {
	for _, n := range doc.Nodes {
		into[n.ID] = n
	}
	for _, e := range doc.Edges {
		into[e.ID] = e
	}
}
