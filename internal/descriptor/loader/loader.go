package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-screener/pkg/descriptor"
)

// Loader implements descriptor.Loader by delegating to file, fs.FS, or HTTP
// strategies. Successful loads may be memoised in an LRU cache.
type Loader struct {
	fs        fs.FS
	http      *resty.Client
	allowHTTP bool
	timeout   time.Duration
	cache     *lru.Cache[string, descriptor.Document]
}

var _ descriptor.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options descriptor.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	l := &Loader{
		fs:        options.FileSystem,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
	if httpClient != nil {
		l.http = resty.NewWithClient(httpClient).
			SetHeader("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	}
	if options.CacheSize > 0 {
		// lru.New only fails on a non-positive size.
		l.cache, _ = lru.New[string, descriptor.Document](options.CacheSize)
	}
	return l
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src descriptor.Source) (descriptor.Document, error) {
	if src == nil {
		return descriptor.Document{}, errors.New("screener loader: source is nil")
	}

	key := cacheKey(src)
	if l.cache != nil {
		if doc, ok := l.cache.Get(key); ok {
			return doc, nil
		}
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case descriptor.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case descriptor.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case descriptor.SourceKindURL:
		if !l.allowHTTP {
			return descriptor.Document{}, errors.New("screener loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("screener loader: unsupported source kind")
	}
	if err != nil {
		return descriptor.Document{}, err
	}

	doc, err := descriptor.NewDocument(src, data)
	if err != nil {
		return descriptor.Document{}, err
	}
	if l.cache != nil {
		l.cache.Add(key, doc)
	}
	return doc, nil
}

// Purge drops every cached document.
func (l *Loader) Purge() {
	if l.cache != nil {
		l.cache.Purge()
	}
}

func cacheKey(src descriptor.Source) string {
	return string(src.Kind()) + "|" + src.Location()
}
