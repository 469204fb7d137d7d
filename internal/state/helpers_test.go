package state

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeAPI is an httptest server with per-route hit counters.
type fakeAPI struct {
	mux    *http.ServeMux
	server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux(), hits: make(map[string]int)}
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[pattern]++
		f.mu.Unlock()
		h(w, r)
	})
}

func (f *fakeAPI) reply(pattern string, status int, body string) {
	f.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		respond(w, status, body)
	})
}

func (f *fakeAPI) count(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[pattern]
}

func (f *fakeAPI) client(t *testing.T) *api.Client {
	t.Helper()
	client, err := api.NewClient(models.ApiConfig{
		BaseURL:        f.server.URL + "/api",
		RequestTimeout: 2 * time.Second,
		RateLimit:      1000,
		RateBurst:      100,
	})
	require.NoError(t, err)
	return client
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestApp(t *testing.T, f *fakeAPI, tokens store.TokenStore) *App {
	t.Helper()
	if tokens == nil {
		tokens = store.NewMemoryStore()
	}
	app, err := NewApp(context.Background(), AppConfig{
		Client: f.client(t),
		Tokens: tokens,
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

// signedInApp returns an app whose session was rehydrated from tok.
func signedInApp(t *testing.T, f *fakeAPI) (*App, *store.MemoryStore) {
	t.Helper()
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.SaveToken(context.Background(), "tok"))
	return newTestApp(t, f, tokens), tokens
}

// recorder collects hub events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func record(h *Hub) *recorder {
	r := &recorder{}
	h.Subscribe(func(ev Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) phases(action string) []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Phase
	for _, ev := range r.events {
		if ev.Action == action {
			out = append(out, ev.Phase)
		}
	}
	return out
}

// blockingStore holds every SaveToken until release is closed. saving is
// closed when the first save arrives.
type blockingStore struct {
	*store.MemoryStore
	saving  chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		MemoryStore: store.NewMemoryStore(),
		saving:      make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (b *blockingStore) SaveToken(ctx context.Context, token string) error {
	b.once.Do(func() { close(b.saving) })
	<-b.release
	return b.MemoryStore.SaveToken(ctx, token)
}
