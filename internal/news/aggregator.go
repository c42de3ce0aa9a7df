package news

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/pkg/logging"
)

const (
	UserAgent      = "fixamlimited/1.0 (+https://fixam.co.uk)"
	DefaultTTL     = 30 * time.Minute
	defaultTimeout = 10 * time.Second
)

var rawDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Item is one headline.
type Item struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Summary     string `json:"summary,omitempty"`

	published time.Time
}

// Snapshot is a merged, sorted view of every source.
type Snapshot struct {
	GeneratedAt string `json:"generatedAt"`
	Items       []Item `json:"items"`
}

// Options tune the aggregator. Zero values take the defaults.
type Options struct {
	Sources    []Source
	TTL        time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Aggregator merges several feeds and caches the result in-process.
type Aggregator struct {
	sources []Source
	ttl     time.Duration
	timeout time.Duration
	client  *http.Client
	logger  *logging.Logger
	metrics *metrics.SiteMetrics
	now     func() time.Time

	mu      sync.Mutex
	cached  *Snapshot
	expires time.Time
}

func NewAggregator(opts Options, logger *logging.Logger, m *metrics.SiteMetrics) *Aggregator {
	if logger == nil {
		logger = logging.Default()
	}
	if len(opts.Sources) == 0 {
		opts.Sources = DefaultSources
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Aggregator{
		sources: opts.Sources,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
		client:  opts.HTTPClient,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// List returns up to limit items. When every source fails the empty snapshot
// is returned together with ErrAllSourcesFailed and nothing is cached.
func (a *Aggregator) List(ctx context.Context, limit int) (Snapshot, error) {
	snap, err := a.snapshot(ctx)
	if limit >= 0 && len(snap.Items) > limit {
		snap.Items = snap.Items[:limit]
	}
	return snap, err
}

func (a *Aggregator) snapshot(ctx context.Context) (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil && a.now().Before(a.expires) {
		return *a.cached, nil
	}

	snap, failures := a.refresh(ctx)
	if failures == len(a.sources) {
		return snap, ErrAllSourcesFailed
	}
	a.cached = &snap
	a.expires = a.now().Add(a.ttl)
	return snap, nil
}

func (a *Aggregator) refresh(ctx context.Context) (Snapshot, int) {
	results := make([][]Item, len(a.sources))
	errs := make([]error, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			results[i], errs[i] = a.fetch(ctx, src)
			a.metrics.ObserveFeedFetch(src.Name, errs[i])
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	seen := make(map[string]struct{})
	var items []Item
	for i, batch := range results {
		if errs[i] != nil {
			failures++
			a.logger.Error("failed to load news feed", "source", a.sources[i].Name, "error", errs[i])
			continue
		}
		for _, item := range batch {
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].published.After(items[j].published)
	})
	if items == nil {
		items = []Item{}
	}
	return Snapshot{GeneratedAt: forms.Timestamp(a.now()), Items: items}, failures
}

func (a *Aggregator) fetch(ctx context.Context, src Source) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.UserAgent = UserAgent
	parser.Client = a.client

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("news: fetch %s: %w", src.Name, err)
	}

	fetchedAt := a.now()
	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}
		published := itemDate(it, fetchedAt)
		summary := plainText(it.Description)
		if summary == "" {
			summary = plainText(it.Content)
		}
		items = append(items, Item{
			Title:       title,
			URL:         link,
			Source:      src.Name,
			PublishedAt: forms.Timestamp(published),
			Summary:     summary,
			published:   published,
		})
	}
	return items, nil
}

// itemDate resolves the publish date: parsed, then raw, then the updated
// fields in the same order, then fallback.
func itemDate(it *gofeed.Item, fallback time.Time) time.Time {
	if t, ok := resolveDate(it.PublishedParsed, it.Published); ok {
		return t
	}
	if t, ok := resolveDate(it.UpdatedParsed, it.Updated); ok {
		return t
	}
	return fallback.UTC()
}

func resolveDate(parsed *time.Time, raw string) (time.Time, bool) {
	if parsed != nil {
		return parsed.UTC(), true
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range rawDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
