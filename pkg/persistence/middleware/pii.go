package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/mohae/deepcopy"
)

// Mask replaces every redacted value.
const Mask = "***"

type piiMiddleware struct {
	next     ports.DocumentStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks node and edge props whose
// keys match one of the patterns before they reach the store. Loads are
// passed through untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, id string, doc *domain.Document) error {
	// The editor keeps using doc, so mask a copy.
	cloned := deepcopy.Copy(doc).(*domain.Document)
	for i := range cloned.Nodes {
		maskMap(cloned.Nodes[i].Props, m.patterns)
	}
	for i := range cloned.Edges {
		maskMap(cloned.Edges[i].Props, m.patterns)
	}
	return m.next.Save(ctx, id, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Document, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(props map[string]any, patterns []*regexp.Regexp) {
	for k, v := range props {
		for _, p := range patterns {
			if p.MatchString(k) {
				props[k] = Mask
				break
			}
		}

		if sub, ok := v.(map[string]any); ok && props[k] != Mask {
			maskMap(sub, patterns)
		}
	}
}
