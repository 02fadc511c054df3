// Package config loads the settings shared by the easel commands from a YAML
// or JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config is the root of a config file.
type Config struct {
	Log    Log    `json:"log"`
	Store  Store  `json:"store"`
	Editor Editor `json:"editor"`
	Server Server `json:"server"`
}

type Log struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

// Store selects the document store.
type Store struct {
	Driver string `json:"driver" validate:"oneof=memory file sqlite redis"`
	// Dir and Format configure the file driver.
	Dir    string `json:"dir"`
	Format string `json:"format" validate:"oneof=json yaml"`
	// DSN is the sqlite database path.
	DSN string `json:"dsn"`
	// Addr, Prefix and TTL configure the redis driver.
	Addr   string        `json:"addr"`
	Prefix string        `json:"prefix"`
	TTL    time.Duration `json:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set documents are sealed
	// before they reach the driver. FallbackKeys still decrypt during rotation.
	EncryptionKey string   `json:"encryption_key"`
	FallbackKeys  []string `json:"fallback_keys"`
	// Redact lists regular expressions; matching prop keys are masked on save.
	Redact []string `json:"redact"`
}

// Editor holds the options applied to every hosted editor.
type Editor struct {
	Kind           domain.GraphKind `json:"kind" validate:"oneof=flow mind"`
	MinZoom        float64          `json:"min_zoom" validate:"gte=0"`
	MaxZoom        float64          `json:"max_zoom" validate:"omitempty,gte=0,gtefield=MinZoom"`
	Width          float64          `json:"width"`
	Height         float64          `json:"height"`
	EdgeKind       string           `json:"edge_kind"`
	AllowMultiEdge bool             `json:"allow_multi_edge"`
	LinkRules      domain.LinkRules `json:"link_rules"`
}

type Server struct {
	Addr    string        `json:"addr"`
	Metrics bool          `json:"metrics"`
	LockTTL time.Duration `json:"lock_ttl"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Load reads the file at path. The format follows the extension: .yaml and
// .yml are YAML, .json is JSON. Durations are written as "30s".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	c := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           c,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.Format == "" {
		c.Store.Format = "json"
	}
	if c.Store.DSN == "" {
		c.Store.DSN = filepath.Join(".easel", "easel.db")
	}
	if c.Store.Addr == "" {
		c.Store.Addr = "localhost:6379"
	}
	if c.Editor.Kind == "" {
		c.Editor.Kind = domain.KindFlow
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate rejects settings no component can honor. A zero max_zoom keeps
// the editor's own limits.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	problems := make([]string, 0, len(fields))
	for _, fe := range fields {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

// describe renders a field error with its config path, e.g. "store.driver".
func describe(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be below %s", path, "min_zoom")
	default:
		return fmt.Sprintf("%s failed %q", path, fe.Tag())
	}
}

// EditorOptions translates the editor section into easel options. Unset
// values keep the editor defaults.
func (c *Config) EditorOptions() []easel.Option {
	e := c.Editor
	opts := []easel.Option{
		easel.WithKind(e.Kind),
		easel.WithAllowMultiEdge(e.AllowMultiEdge),
	}
	if e.MinZoom > 0 && e.MaxZoom > 0 {
		opts = append(opts, easel.WithZoomLimits(e.MinZoom, e.MaxZoom))
	}
	if e.Width > 0 && e.Height > 0 {
		opts = append(opts, easel.WithSize(e.Width, e.Height))
	}
	if e.EdgeKind != "" {
		opts = append(opts, easel.WithEdgeKind(e.EdgeKind))
	}
	if len(e.LinkRules) > 0 {
		opts = append(opts, easel.WithLinkRules(e.LinkRules))
	}
	return opts
}
