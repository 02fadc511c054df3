package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/config"
	"github.com/aretw0/easel/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ReadDocument decodes a document file. YAML is used for .yaml and .yml,
// JSON for everything else.
func ReadDocument(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var doc domain.Document
	if err := domain.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &doc, nil
}

// OpenDocument loads the document at path into a fresh editor. The document
// kind wins over the configured one.
func OpenDocument(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) (*easel.Editor, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts := append(EditorOptions(cfg, logger, domain.LifecycleHooks{}), easel.WithDocumentID(id))
	ed, err := easel.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := ed.Load(ctx, doc); err != nil {
		return nil, err
	}
	return ed, nil
}

// LoadConfig reads path (if set), applies the flag overrides and validates
// the result.
func LoadConfig(path, level string, asJSON bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if asJSON {
		cfg.Log.JSON = true
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
