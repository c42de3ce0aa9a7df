package news

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixam/fixam-site/pkg/logging"
)

const rssA = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>A</title>
<item><title>Patch Tuesday</title><link>https://a.example/patch</link>
<description>&lt;p&gt;Update &lt;b&gt;now&lt;/b&gt;&lt;/p&gt;</description>
<pubDate>Tue, 14 Oct 2026 17:00:00 +0000</pubDate></item>
<item><title>   </title><link>https://a.example/untitled</link></item>
<item><title>No link</title></item>
<item><title>Shared story</title><link>https://shared.example/story</link>
<pubDate>Mon, 13 Oct 2026 09:00:00 +0000</pubDate></item>
</channel></rss>`

const atomB = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>B</title>
<entry><title>Zero-day in VPN</title><link href="https://b.example/vpn"/>
<updated>2026-10-16T08:00:00Z</updated><summary>Exploited in the wild</summary></entry>
<entry><title>Shared story (copy)</title><link href="https://shared.example/story"/>
<updated>2026-10-12T08:00:00Z</updated></entry>
</feed>`

type feedServer struct {
	*httptest.Server
	hits   int32
	status int32
	agents chan string
}

func newFeedServer(t *testing.T, body string) *feedServer {
	t.Helper()
	fs := &feedServer{status: http.StatusOK, agents: make(chan string, 16)}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fs.hits, 1)
		select {
		case fs.agents <- r.Header.Get("User-Agent"):
		default:
		}
		if code := atomic.LoadInt32(&fs.status); code != http.StatusOK {
			w.WriteHeader(int(code))
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *feedServer) fail() { atomic.StoreInt32(&fs.status, http.StatusServiceUnavailable) }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestAggregator(sources []Source) (*Aggregator, *clock) {
	c := &clock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	a := NewAggregator(Options{Sources: sources}, logging.NewWithWriter(io.Discard, "error"), nil)
	a.now = c.now
	return a, c
}

func TestAggregator_MergesDedupesAndSorts(t *testing.T) {
	a1 := newFeedServer(t, rssA)
	b1 := newFeedServer(t, atomB)
	agg, _ := newTestAggregator([]Source{{Name: "Alpha", URL: a1.URL}, {Name: "Beta", URL: b1.URL}})

	snap, err := agg.List(context.Background(), 24)
	require.NoError(t, err)

	urls := make([]string, 0, len(snap.Items))
	for _, it := range snap.Items {
		urls = append(urls, it.URL)
	}
	assert.Equal(t, []string{
		"https://b.example/vpn",
		"https://a.example/patch",
		"https://shared.example/story",
	}, urls)

	assert.Equal(t, "Beta", snap.Items[0].Source)
	assert.Equal(t, "2026-10-16T08:00:00.000Z", snap.Items[0].PublishedAt)
	assert.Equal(t, "Exploited in the wild", snap.Items[0].Summary)
	assert.Equal(t, "Update now", snap.Items[1].Summary)
	assert.Equal(t, "Alpha", snap.Items[2].Source, "first occurrence of a link wins")
	assert.Equal(t, "2026-10-18T12:00:00.000Z", snap.GeneratedAt)
	assert.Equal(t, UserAgent, <-a1.agents)
}

func TestAggregator_CachesUntilTTL(t *testing.T) {
	src := newFeedServer(t, rssA)
	agg, c := newTestAggregator([]Source{{Name: "Alpha", URL: src.URL}})
	ctx := context.Background()

	_, err := agg.List(ctx, 6)
	require.NoError(t, err)
	c.t = c.t.Add(29 * time.Minute)
	_, err = agg.List(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.hits))

	c.t = c.t.Add(2 * time.Minute)
	_, err = agg.List(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.hits))
}

func TestAggregator_PartialFailure(t *testing.T) {
	good := newFeedServer(t, atomB)
	bad := newFeedServer(t, rssA)
	bad.fail()
	agg, _ := newTestAggregator([]Source{{Name: "Bad", URL: bad.URL}, {Name: "Good", URL: good.URL}})

	snap, err := agg.List(context.Background(), 24)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
}

func TestAggregator_AllFailedIsNotCached(t *testing.T) {
	src := newFeedServer(t, rssA)
	src.fail()
	agg, _ := newTestAggregator([]Source{{Name: "Alpha", URL: src.URL}})
	ctx := context.Background()

	snap, err := agg.List(ctx, 6)
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.Empty(t, snap.Items)

	atomic.StoreInt32(&src.status, http.StatusOK)
	snap, err = agg.List(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.hits))
}

func TestAggregator_Limit(t *testing.T) {
	src := newFeedServer(t, rssA)
	agg, _ := newTestAggregator([]Source{{Name: "Alpha", URL: src.URL}})

	snap, err := agg.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)

	snap, err = agg.List(context.Background(), 24)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2, "limiting a response does not shrink the cache")
}

func TestAggregator_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	agg := NewAggregator(Options{
		Sources: []Source{{Name: "Slow", URL: slow.URL}},
		Timeout: 50 * time.Millisecond,
	}, logging.NewWithWriter(io.Discard, "error"), nil)

	start := time.Now()
	_, err := agg.List(context.Background(), 6)
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHandler_List(t *testing.T) {
	src := newFeedServer(t, rssA)
	agg, _ := newTestAggregator([]Source{{Name: "Alpha", URL: src.URL}})
	h := NewHandler(agg, nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/news?limit=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, s-maxage=1800, stale-while-revalidate=86400", rec.Header().Get("Cache-Control"))
	var body Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Items, 1)
	assert.Equal(t, "Patch Tuesday", body.Items[0].Title)
}

func TestHandler_AllFailed(t *testing.T) {
	src := newFeedServer(t, rssA)
	src.fail()
	agg, _ := newTestAggregator([]Source{{Name: "Alpha", URL: src.URL}})

	rec := httptest.NewRecorder()
	NewHandler(agg, nil).List(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"generatedAt":"2026-10-18T12:00:00.000Z","items":[]}`, rec.Body.String())
}

func TestItemDate_ResolutionOrder(t *testing.T) {
	fetched := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	parsedPub := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	parsedUpd := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		item gofeed.Item
		want time.Time
	}{
		{"parsed publish", gofeed.Item{PublishedParsed: &parsedPub, UpdatedParsed: &parsedUpd}, parsedPub},
		{"raw publish beats parsed update", gofeed.Item{Published: "2026-10-02", UpdatedParsed: &parsedUpd}, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)},
		{"parsed update", gofeed.Item{Published: "soon", UpdatedParsed: &parsedUpd}, parsedUpd},
		{"raw update", gofeed.Item{Updated: "Thu, 16 Oct 2026 10:00:00 +0000"}, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)},
		{"fetch time", gofeed.Item{Published: "soon"}, fetched},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := tc.item
			assert.True(t, tc.want.Equal(itemDate(&item, fetched)), itemDate(&item, fetched))
		})
	}
}
