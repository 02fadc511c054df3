package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/easel/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a document.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

func (f Format) ext() string {
	if f == YAML {
		return ".yaml"
	}
	return ".json"
}

// Store implements ports.DocumentStore using the local filesystem.
// Each document is one file named after its id.
type Store struct {
	BasePath string
	Format   Format
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".easel/documents".
func New(basePath string, format Format) *Store {
	if basePath == "" {
		basePath = filepath.Join(".easel", "documents")
	}
	if format != YAML {
		format = JSON
	}
	return &Store{BasePath: basePath, Format: format}
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("document id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return filepath.Join(s.BasePath, id+s.Format.ext()), nil
}

func (s *Store) encode(doc *domain.Document) ([]byte, error) {
	if s.Format == YAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *Store) decode(data []byte, doc *domain.Document) error {
	if s.Format == YAML {
		return yaml.Unmarshal(data, doc)
	}
	return json.Unmarshal(data, doc)
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, id string, doc *domain.Document) error {
	destPath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}

	data, err := s.encode(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+id+"-*"+s.Format.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing document for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load retrieves the document from disk.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}

	var doc domain.Document
	if err := s.decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// Delete removes the document file. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// List returns the ids of every document file in BasePath.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ext := s.Format.ext()
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
