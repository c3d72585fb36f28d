// Package screener loads questionnaire descriptors and starts screening
// sessions over them. It wires the loader, normalizer, renderer and navigator
// so callers with simple needs can stay on a handful of functions.
package screener

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-screener/internal/descriptor/loader"
	"github.com/goliatone/go-screener/pkg/aggregate"
	"github.com/goliatone/go-screener/pkg/config"
	"github.com/goliatone/go-screener/pkg/descriptor"
	"github.com/goliatone/go-screener/pkg/logger"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/navigator"
	"github.com/goliatone/go-screener/pkg/normalize"
	"github.com/goliatone/go-screener/pkg/render"
)

// ErrEmptySource is returned when Load receives a blank location.
var ErrEmptySource = errors.New("screener: empty descriptor source")

// Option customises Load and LoadSource.
type Option func(*options)

type options struct {
	loader        descriptor.Loader
	loaderOptions []descriptor.LoaderOption
	normalizer    *normalize.Normalizer
}

// WithLoader replaces the default loader.
func WithLoader(l descriptor.Loader) Option {
	return func(o *options) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithLoaderOptions configures the default loader.
func WithLoaderOptions(opts ...descriptor.LoaderOption) Option {
	return func(o *options) {
		o.loaderOptions = append(o.loaderOptions, opts...)
	}
}

// WithFileSystem lets fs sources resolve against files.
func WithFileSystem(files fs.FS) Option {
	return WithLoaderOptions(descriptor.WithFileSystem(files))
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(o *options) {
		if n != nil {
			o.normalizer = n
		}
	}
}

// WithConfig applies the loader section and the default consult type.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		if cfg.Loader.AllowHTTP {
			o.loaderOptions = append(o.loaderOptions, descriptor.WithHTTPFallback(cfg.Loader.Timeout))
		}
		o.loaderOptions = append(o.loaderOptions, descriptor.WithCache(cfg.Loader.CacheSize))
		o.normalizer = normalize.New(normalize.WithDefaultConsultType(cfg.Consult.Default))
	}
}

// NewLoader builds the file, fs.FS and HTTP loader.
func NewLoader(opts ...descriptor.LoaderOption) descriptor.Loader {
	return loader.New(descriptor.NewLoaderOptions(opts...))
}

func resolve(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.loader == nil {
		o.loader = NewLoader(o.loaderOptions...)
	}
	if o.normalizer == nil {
		o.normalizer = normalize.New()
	}
	return o
}

// Load reads a descriptor from a file path or http(s) URL and normalizes it.
func Load(ctx context.Context, location string, opts ...Option) (model.FormModel, error) {
	src, err := parseSource(location)
	if err != nil {
		return model.FormModel{}, err
	}
	return LoadSource(ctx, src, opts...)
}

// LoadSource is Load for an explicit descriptor.Source.
func LoadSource(ctx context.Context, src descriptor.Source, opts ...Option) (model.FormModel, error) {
	o := resolve(opts)
	doc, err := fetch(ctx, o.loader, src)
	if err != nil {
		return model.FormModel{}, err
	}
	return o.normalizer.NormalizeDocument(doc)
}

// LoadDocument fetches the raw descriptor without normalizing it.
func LoadDocument(ctx context.Context, location string, opts ...Option) (descriptor.Document, error) {
	src, err := parseSource(location)
	if err != nil {
		return descriptor.Document{}, err
	}
	return fetch(ctx, resolve(opts).loader, src)
}

func parseSource(location string) (descriptor.Source, error) {
	src := descriptor.ParseSource(location)
	if src != nil {
		return src, nil
	}
	if strings.TrimSpace(location) == "" {
		return nil, ErrEmptySource
	}
	return nil, fmt.Errorf("screener: invalid source %q", location)
}

func fetch(ctx context.Context, l descriptor.Loader, src descriptor.Source) (descriptor.Document, error) {
	doc, err := l.Load(ctx, src)
	if err != nil {
		return descriptor.Document{}, fmt.Errorf("screener: load %s: %w", src.Location(), err)
	}
	return doc, nil
}

// Normalizer returns the normalizer opts resolve to.
func Normalizer(opts ...Option) *normalize.Normalizer {
	return resolve(opts).normalizer
}

// FromValue normalizes an already decoded descriptor.
func FromValue(value any) (model.FormModel, error) {
	return normalize.NormalizeValue(value)
}

// Render describes every step of form with the default renderer.
func Render(form model.FormModel) model.Tree {
	return render.New().Form(form)
}

// NewSession starts a navigator session over form.
func NewSession(form model.FormModel, opts ...navigator.Option) (*navigator.Session, error) {
	return navigator.New(form, opts...)
}

// SessionOptions derives navigator options from cfg: the record builder gets
// the sync-only states and every component logs through log.
func SessionOptions(cfg *config.Config, log logger.Logger) []navigator.Option {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	builder := aggregate.NewBuilder(
		aggregate.WithSyncStates(cfg.Consult.SyncStates...),
		aggregate.WithLogger(log),
	)
	return []navigator.Option{
		navigator.WithBuilder(builder),
		navigator.WithLogger(log),
	}
}
