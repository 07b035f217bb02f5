package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/pkg/logger"
	"github.com/mrdon/kioskd/pkg/metrics"
)

// Default HTTP store configuration constants.
const (
	defaultFetchTimeout   = 30 * time.Second
	defaultBusinessesPath = "data/businesses.yaml"
	defaultFactsPath      = "data/facts.yaml"
	defaultImagesPath     = "data/images.yaml"
	defaultEventsPath     = "data/events.yaml"
)

// eventTimeLayouts are tried in order when parsing event start instants.
// The scrapers emit local times without a zone suffix.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Option applies a configuration option to the HTTPStore.
type Option func(*HTTPStore)

// WithTimeout sets the per-request fetch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *HTTPStore) {
		if timeout > 0 {
			s.client.Timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPStore) {
		if client != nil {
			s.client = client
		}
	}
}

// WithPaths overrides the per-collection document paths.
func WithPaths(businesses, facts, images, events string) Option {
	return func(s *HTTPStore) {
		if businesses != "" {
			s.businessesPath = businesses
		}
		if facts != "" {
			s.factsPath = facts
		}
		if images != "" {
			s.imagesPath = images
		}
		if events != "" {
			s.eventsPath = events
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *HTTPStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// HTTPStore implements Store over YAML documents fetched via HTTP.
type HTTPStore struct {
	baseURL string
	client  *http.Client

	businessesPath string
	factsPath      string
	imagesPath     string
	eventsPath     string

	logger logger.Logger
}

// NewHTTPStore creates a store rooted at baseURL.
func NewHTTPStore(baseURL string, opts ...Option) *HTTPStore {
	s := &HTTPStore{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Timeout: defaultFetchTimeout},
		businessesPath: defaultBusinessesPath,
		factsPath:      defaultFactsPath,
		imagesPath:     defaultImagesPath,
		eventsPath:     defaultEventsPath,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("source")
	}

	return s
}

// Document shapes as emitted by the scrapers.

type businessesDoc struct {
	Businesses []struct {
		Name    string `yaml:"name"`
		Tagline string `yaml:"tagline"`
		Address string `yaml:"address"`
		Phone   string `yaml:"phone"`
		URL     string `yaml:"url"`
		Image   string `yaml:"image"`
	} `yaml:"businesses"`
}

type factsDoc struct {
	Facts []struct {
		Title   string `yaml:"title"`
		Content string `yaml:"content"`
		Source  string `yaml:"source"`
	} `yaml:"facts"`
}

type imagesDoc struct {
	Images []struct {
		Title   string `yaml:"title"`
		Caption string `yaml:"caption"`
		Path    string `yaml:"path"`
	} `yaml:"images"`
}

type eventsDoc struct {
	Events []struct {
		Title           string `yaml:"title"`
		Description     string `yaml:"description"`
		Time            string `yaml:"time"`
		Duration        int    `yaml:"duration"`
		Location        string `yaml:"location"`
		Address         string `yaml:"address"`
		URL             string `yaml:"url"`
		Image           string `yaml:"image"`
		IsMajor         bool   `yaml:"is_major"`
		RelatedBusiness string `yaml:"related_business"`
	} `yaml:"events"`
	LastUpdated string `yaml:"last_updated"`
}

// Businesses fetches the businesses collection.
func (s *HTTPStore) Businesses(ctx context.Context) ([]model.Business, error) {
	var doc businessesDoc
	if err := s.fetch(ctx, s.businessesPath, &doc); err != nil {
		metrics.RecordSourceFetchError("businesses")
		return nil, err
	}

	out := make([]model.Business, 0, len(doc.Businesses))
	for _, b := range doc.Businesses {
		out = append(out, model.Business{
			Name:    b.Name,
			Tagline: b.Tagline,
			Address: b.Address,
			Phone:   b.Phone,
			URL:     b.URL,
			Image:   b.Image,
		})
	}
	return out, nil
}

// Facts fetches the facts collection.
func (s *HTTPStore) Facts(ctx context.Context) ([]model.Fact, error) {
	var doc factsDoc
	if err := s.fetch(ctx, s.factsPath, &doc); err != nil {
		metrics.RecordSourceFetchError("facts")
		return nil, err
	}

	out := make([]model.Fact, 0, len(doc.Facts))
	for _, f := range doc.Facts {
		out = append(out, model.Fact{Title: f.Title, Content: f.Content, Source: f.Source})
	}
	return out, nil
}

// Images fetches the images collection.
func (s *HTTPStore) Images(ctx context.Context) ([]model.Image, error) {
	var doc imagesDoc
	if err := s.fetch(ctx, s.imagesPath, &doc); err != nil {
		metrics.RecordSourceFetchError("images")
		return nil, err
	}

	out := make([]model.Image, 0, len(doc.Images))
	for _, i := range doc.Images {
		out = append(out, model.Image{Title: i.Title, Caption: i.Caption, Path: i.Path})
	}
	return out, nil
}

// Events fetches the optional events collection. A missing document (404)
// degrades to an empty slice.
func (s *HTTPStore) Events(ctx context.Context) ([]model.Event, error) {
	var doc eventsDoc
	if err := s.fetch(ctx, s.eventsPath, &doc); err != nil {
		if isNotFound(err) {
			s.logger.Info(ctx, "events document absent; rotating without events")
			return nil, nil
		}
		metrics.RecordSourceFetchError("events")
		return nil, err
	}

	out := make([]model.Event, 0, len(doc.Events))
	for _, e := range doc.Events {
		out = append(out, model.Event{
			Title:           e.Title,
			Description:     e.Description,
			Time:            parseEventTime(e.Time),
			DurationMinutes: e.Duration,
			Location:        e.Location,
			Address:         e.Address,
			URL:             e.URL,
			Image:           e.Image,
			IsMajor:         e.IsMajor,
			RelatedBusiness: e.RelatedBusiness,
		})
	}
	return out, nil
}

// fetch GETs a document and decodes it into v.
func (s *HTTPStore) fetch(ctx context.Context, path string, v any) error {
	url := s.baseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %w", ErrFetch, path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: unexpected status %d", ErrFetch, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
	}
	if err := yaml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
	}
	return nil
}

// parseEventTime parses a scraper-emitted start instant, returning the zero
// time when no layout matches so the normalizer can skip the entry.
func parseEventTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
