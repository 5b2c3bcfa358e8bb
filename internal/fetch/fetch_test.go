package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/logging"
)

// scriptedBrowser replays render outcomes in order.
type scriptedBrowser struct {
	mu      sync.Mutex
	steps   []step
	renders int
	closed  bool
}

type step struct {
	snap Snapshot
	err  error
}

func (b *scriptedBrowser) Render(ctx context.Context, url string, wait time.Duration) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renders++
	if len(b.steps) == 0 {
		return Snapshot{}, errors.New("no more steps")
	}
	s := b.steps[0]
	b.steps = b.steps[1:]
	return s.snap, s.err
}

func (b *scriptedBrowser) Close() error {
	b.closed = true
	return nil
}

type sleepRecorder struct{ calls []time.Duration }

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func newTestFetcher(b Browser, rec *sleepRecorder) *Fetcher {
	return New(func(context.Context) (Browser, error) { return b, nil },
		WithLogger(logging.Discard()),
		WithSleep(rec.sleep),
		WithTimings(0, time.Second, 2*time.Second),
	)
}

const page = `<html><head><title>Acme Dental</title><style>.x{}</style></head>
<body><header>Menu</header><nav>Home | About</nav>
<main><h1>Acme Dental</h1><p>Family dentistry since 1998.</p><p>Call (512) 555-0100</p></main>
<script>var tracking = 1;</script><footer>Copyright</footer></body></html>`

func TestFetchOK(t *testing.T) {
	b := &scriptedBrowser{steps: []step{{snap: Snapshot{HTML: page, StatusCode: 200}}}}
	rec := &sleepRecorder{}
	f := newTestFetcher(b, rec)

	got := f.Fetch(context.Background(), "https://acme.test")
	assert.Equal(t, domain.FetchOK, got.Status)
	assert.Equal(t, "Acme Dental Family dentistry since 1998. Call (512) 555-0100", got.Text)
	assert.Empty(t, rec.calls)

	require.NoError(t, f.Close())
	assert.True(t, b.closed)
}

func TestFetchRetriesTransientOnce(t *testing.T) {
	b := &scriptedBrowser{steps: []step{
		{err: errors.New("net::ERR_CONNECTION_RESET")},
		{snap: Snapshot{HTML: page, StatusCode: 200}},
	}}
	rec := &sleepRecorder{}
	got := newTestFetcher(b, rec).Fetch(context.Background(), "https://acme.test")

	assert.Equal(t, domain.FetchOK, got.Status)
	assert.Equal(t, 2, b.renders)
	assert.Equal(t, []time.Duration{2 * time.Second}, rec.calls)
}

func TestFetchFailsAfterSecondTransient(t *testing.T) {
	b := &scriptedBrowser{steps: []step{
		{err: context.DeadlineExceeded},
		{snap: Snapshot{StatusCode: 502}},
		{snap: Snapshot{HTML: page, StatusCode: 200}},
	}}
	rec := &sleepRecorder{}
	got := newTestFetcher(b, rec).Fetch(context.Background(), "https://acme.test")

	assert.Equal(t, domain.FetchFailed, got.Status)
	assert.Empty(t, got.Text)
	assert.Equal(t, 2, b.renders)
	assert.Len(t, rec.calls, 1)
}

func TestFetchBlockedIsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"forbidden", Snapshot{HTML: page, StatusCode: 403}},
		{"rate limited", Snapshot{StatusCode: 429}},
		{"challenge title", Snapshot{HTML: `<html><head><title>Just a moment...</title></head><body>Checking your browser</body></html>`, StatusCode: 200}},
		{"captcha wall", Snapshot{HTML: `<html><body><div class="g-recaptcha"></div>Please verify</body></html>`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &scriptedBrowser{steps: []step{{snap: tt.snap}, {snap: Snapshot{HTML: page, StatusCode: 200}}}}
			rec := &sleepRecorder{}
			got := newTestFetcher(b, rec).Fetch(context.Background(), "https://acme.test")

			assert.Equal(t, domain.FetchBlocked, got.Status)
			assert.Empty(t, got.Text)
			assert.Equal(t, 1, b.renders)
			assert.Empty(t, rec.calls)
		})
	}
}

func TestFetchNotFoundFailsWithoutRetry(t *testing.T) {
	b := &scriptedBrowser{steps: []step{{snap: Snapshot{StatusCode: 404}}}}
	got := newTestFetcher(b, &sleepRecorder{}).Fetch(context.Background(), "https://acme.test/x")
	assert.Equal(t, domain.FetchFailed, got.Status)
	assert.Equal(t, 1, b.renders)
}

func TestFetchContactFormCaptchaIsNotBlocked(t *testing.T) {
	long := strings.Repeat("We build websites for dentists. ", 80)
	html := `<html><body><p>` + long + `</p><form><div class="g-recaptcha"></div></form></body></html>`
	b := &scriptedBrowser{steps: []step{{snap: Snapshot{HTML: html, StatusCode: 200}}}}
	got := newTestFetcher(b, &sleepRecorder{}).Fetch(context.Background(), "https://acme.test")
	assert.Equal(t, domain.FetchOK, got.Status)
}

func TestFetchOpenFailure(t *testing.T) {
	opens := 0
	f := New(func(context.Context) (Browser, error) {
		opens++
		return nil, errors.New("chrome not found")
	}, WithLogger(logging.Discard()))

	for i := 0; i < 2; i++ {
		got := f.Fetch(context.Background(), "https://acme.test")
		assert.Equal(t, domain.FetchFailed, got.Status)
		assert.Contains(t, got.Reason, "chrome not found")
	}
	assert.Equal(t, 1, opens)
	assert.NoError(t, f.Close())
}

func TestFetchOpensLazilyOnce(t *testing.T) {
	opens := 0
	b := &scriptedBrowser{steps: []step{
		{snap: Snapshot{HTML: page}},
		{snap: Snapshot{HTML: page}},
	}}
	f := New(func(context.Context) (Browser, error) {
		opens++
		return b, nil
	}, WithLogger(logging.Discard()))
	assert.Equal(t, 0, opens)

	f.Fetch(context.Background(), "https://a.test")
	f.Fetch(context.Background(), "https://b.test")
	assert.Equal(t, 1, opens)
}

func TestFetchEmptyPageIsOK(t *testing.T) {
	b := &scriptedBrowser{steps: []step{{snap: Snapshot{HTML: `<html><body><script>app()</script></body></html>`, StatusCode: 200}}}}
	got := newTestFetcher(b, &sleepRecorder{}).Fetch(context.Background(), "https://spa.test")
	assert.Equal(t, domain.FetchOK, got.Status)
	assert.Empty(t, got.Text)
}

func TestHTTPDriverAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blocked":
			w.WriteHeader(http.StatusForbidden)
		default:
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(page))
		}
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Fetch.Driver = "http"
	cfg.Fetch.UserAgent = "test-agent"
	cfg.Fetch.RenderWaitSeconds = 0
	f, err := FromConfig(cfg, WithLogger(logging.Discard()))
	require.NoError(t, err)
	defer f.Close()

	ok := f.Fetch(context.Background(), server.URL+"/")
	assert.Equal(t, domain.FetchOK, ok.Status)
	assert.Contains(t, ok.Text, "Family dentistry since 1998.")
	assert.NotContains(t, ok.Text, "tracking")
	assert.NotContains(t, ok.Text, "Copyright")

	blocked := f.Fetch(context.Background(), server.URL+"/blocked")
	assert.Equal(t, domain.FetchBlocked, blocked.Status)
}

func TestCleanHTMLTruncates(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("a", 9000) + "</p></body></html>"
	assert.Len(t, CleanHTML(html, 8000), 8000)
}

func TestNewOpenerUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Fetch.Driver = "selenium"
	_, err := NewOpener(cfg)
	assert.Error(t, err)
}

func TestProfileLockIsExclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")

	first, err := lockProfile(dir)
	require.NoError(t, err)

	_, err = lockProfile(dir)
	assert.True(t, errors.Is(err, ErrProfileBusy))

	first.release()
	again, err := lockProfile(dir)
	require.NoError(t, err)
	again.release()

	none, err := lockProfile("")
	require.NoError(t, err)
	none.release()
}
