package listener

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/state"
	"social-wallet-client-go/internal/store"

	"go.uber.org/zap/zaptest"
)

var pages = []string{
	`{"data":{"wallet":{"balance":100},"history":[
		{"_id":"t1","type":"payin","transactionType":"recharge","amount":100,"status":"completed"}]}}`,
	`{"data":{"wallet":{"balance":50},"history":[
		{"_id":"t2","type":"payout","transactionType":"withdrawal","amount":50,"status":"pending"},
		{"_id":"t1","type":"payin","transactionType":"recharge","amount":100,"status":"completed"}]}}`,
	`{"data":{"wallet":{"balance":50},"history":[
		{"_id":"t2","type":"payout","transactionType":"withdrawal","amount":50,"status":"completed"},
		{"_id":"t1","type":"payin","transactionType":"recharge","amount":100,"status":"completed"}]}}`,
}

func newWalletStore(t *testing.T) *state.WalletStore {
	t.Helper()
	var call atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(call.Add(1)) - 1
		if i >= len(pages) {
			i = len(pages) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, pages[i])
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(models.ApiConfig{
		BaseURL:        server.URL + "/api",
		RequestTimeout: 2 * time.Second,
		RateLimit:      1000,
		RateBurst:      100,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	tokens := store.NewMemoryStore()
	if err := tokens.SaveToken(context.Background(), "tok"); err != nil {
		t.Fatalf("Failed to save token: %v", err)
	}
	app, err := state.NewApp(context.Background(), state.AppConfig{
		Client: client,
		Tokens: tokens,
		Logger: zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(app.Close)
	return app.Wallet
}

func TestPollReportsNewAndChangedTransactions(t *testing.T) {
	l := NewWalletListener(WalletListenerConfig{Wallet: newWalletStore(t)})
	ctx := context.Background()

	if err := l.baseline(ctx); err != nil {
		t.Fatalf("baseline failed: %v", err)
	}

	events, err := l.poll(ctx)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(events) != 1 || events[0].Transaction.Id != "t2" || !events[0].New() {
		t.Fatalf("Expected new t2, got %+v", events)
	}

	events, err = l.poll(ctx)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(events) != 1 || events[0].PreviousStatus != models.StatusPending {
		t.Fatalf("Expected t2 status change, got %+v", events)
	}

	events, err = l.poll(ctx)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no events, got %+v", events)
	}
}

func TestStartAndStop(t *testing.T) {
	var (
		mu     sync.Mutex
		events []TransactionEvent
	)
	l := NewWalletListener(WalletListenerConfig{
		Wallet:          newWalletStore(t),
		PollingInterval: 10 * time.Millisecond,
		OnTransaction: func(ev TransactionEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	})

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()
	l.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
}

func TestCleanupSeen(t *testing.T) {
	l := NewWalletListener(WalletListenerConfig{Retention: time.Minute})
	now := time.Now()
	l.observe(models.Transaction{Id: "old"}, now.Add(-2*time.Minute))
	l.observe(models.Transaction{Id: "fresh"}, now)

	if removed := l.cleanupSeen(now); removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if l.seenCount() != 1 {
		t.Errorf("Expected 1 remaining, got %d", l.seenCount())
	}
}
