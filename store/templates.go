package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/porticus-lab/go-json-canvas/element"
)

// DefaultKey is the key the template list is stored under.
const DefaultKey = "pdf-templates"

// Template is a named snapshot of a canvas.
type Template struct {
	Name      string             `json:"name"`
	Elements  element.Collection `json:"elements"`
	Version   int                `json:"version,omitempty"`
	CreatedAt time.Time          `json:"createdAt,omitzero"`
	UpdatedAt time.Time          `json:"updatedAt,omitzero"`
}

// Templates stores the whole template list as one JSON array in a KV.
// Every failure is logged and returned wrapped in ErrPersistenceDegraded.
type Templates struct {
	kv     KV
	key    string
	logger *slog.Logger
}

// TemplatesOption configures [Templates].
type TemplatesOption func(*Templates)

// WithKey stores the list under key instead of [DefaultKey].
func WithKey(key string) TemplatesOption {
	return func(t *Templates) {
		if key != "" {
			t.key = key
		}
	}
}

// WithLogger sets the logger degraded operations are reported to.
func WithLogger(l *slog.Logger) TemplatesOption {
	return func(t *Templates) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewTemplates(kv KV, opts ...TemplatesOption) *Templates {
	t := &Templates{
		kv:     kv,
		key:    DefaultKey,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Load returns the stored list. A missing key is an empty list.
func (t *Templates) Load(ctx context.Context) ([]Template, error) {
	raw, ok, err := t.kv.Get(ctx, t.key)
	if err != nil {
		return nil, t.degraded("load", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var list []Template
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, t.degraded("load", fmt.Errorf("decoding: %w", err))
	}
	return list, nil
}

// Put replaces the stored list with list.
func (t *Templates) Put(ctx context.Context, list []Template) error {
	if list == nil {
		list = []Template{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return t.degraded("put", fmt.Errorf("encoding: %w", err))
	}
	if err := t.kv.Set(ctx, t.key, string(raw)); err != nil {
		return t.degraded("put", err)
	}
	return nil
}

// Save appends tpl to the stored list. Names are not deduplicated.
func (t *Templates) Save(ctx context.Context, tpl Template) error {
	list, err := t.Load(ctx)
	if err != nil {
		return err
	}
	return t.Put(ctx, append(list, tpl))
}

func (t *Templates) degraded(op string, err error) error {
	t.logger.Warn("template persistence degraded", "op", op, "key", t.key, "err", err)
	return fmt.Errorf("%w: %s %s: %w", ErrPersistenceDegraded, op, t.key, err)
}
