package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/sheetcalc/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	vk1 := k.ValuesKey("hash1")
	vk2 := k.ValuesKey("hash2")
	if vk1 == vk2 {
		t.Error("Different workbook hashes should produce different keys")
	}
	if !strings.HasPrefix(vk1, "values:") {
		t.Errorf("ValuesKey unexpected: %s", vk1)
	}

	// GraphKey should include options in hash
	gk1 := k.GraphKey("hash1", GraphKeyOpts{Format: "svg"})
	gk2 := k.GraphKey("hash1", GraphKeyOpts{Format: "dot"})
	gk3 := k.GraphKey("hash1", GraphKeyOpts{Format: "svg", Values: true})
	if gk1 == gk2 || gk1 == gk3 {
		t.Error("Different GraphKeyOpts should produce different keys")
	}
	if gk1 != k.GraphKey("hash1", GraphKeyOpts{Format: "svg"}) {
		t.Error("GraphKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:42:")

	// All keys should be prefixed
	if got, want := scoped.ValuesKey("h"), "tenant:42:"+inner.ValuesKey("h"); got != want {
		t.Errorf("ScopedKeyer ValuesKey = %s, want %s", got, want)
	}

	graphKey := scoped.GraphKey("h", GraphKeyOpts{})
	if !strings.HasPrefix(graphKey, "tenant:42:graph:") {
		t.Errorf("ScopedKeyer GraphKey should be prefixed: %s", graphKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ValuesKey("h")
	if key != "prefix:"+NewDefaultKeyer().ValuesKey("h") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestKeyType(t *testing.T) {
	k := NewDefaultKeyer()
	tests := []struct {
		key  string
		want string
	}{
		{k.ValuesKey("h"), "values"},
		{k.GraphKey("h", GraphKeyOpts{}), "graph"},
		{NewScopedKeyer(k, "sheetcalc:").GraphKey("h", GraphKeyOpts{}), "graph"},
		{"plain", "other"},
		{":x", "other"},
	}
	for _, tt := range tests {
		if got := keyType(tt.key); got != tt.want {
			t.Errorf("keyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "values:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "values:abc")
	if err != nil || !hit || string(data) != "payload" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "values:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "values:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "values:abc"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
}

func TestFileCacheLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	key := NewDefaultKeyer().GraphKey("h", GraphKeyOpts{Format: "dot"})
	if err := c.Set(ctx, key, []byte("digraph G {}"), 0); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "graph"))
	if err != nil {
		t.Fatalf("graph entries not grouped by key type: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Errorf("entries = %v", entries)
	}

	// A corrupt entry is a miss and is removed.
	path := filepath.Join(dir, "graph", entries[0].Name())
	os.WriteFile(path, []byte("{"), 0644)
	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCacheCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Set error = %v, want context.Canceled", err)
	}
}

func TestObserved(t *testing.T) {
	ctx := context.Background()
	h := &cacheRecorder{}
	observability.SetCacheHooks(h)
	defer observability.Reset()

	inner, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Observed(inner)
	key := NewDefaultKeyer().GraphKey("h", GraphKeyOpts{Format: "svg"})

	_, _, _ = c.Get(ctx, key)
	_ = c.Set(ctx, key, []byte("<svg/>"), 0)
	_, _, _ = c.Get(ctx, key)

	want := []string{"miss graph", "set graph 6", "hit graph"}
	if !slices.Equal(h.events, want) {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}

type cacheRecorder struct{ events []string }

func (r *cacheRecorder) OnCacheHit(_ context.Context, kt string) {
	r.events = append(r.events, "hit "+kt)
}
func (r *cacheRecorder) OnCacheMiss(_ context.Context, kt string) {
	r.events = append(r.events, "miss "+kt)
}
func (r *cacheRecorder) OnCacheSet(_ context.Context, kt string, size int) {
	r.events = append(r.events, fmt.Sprintf("set %s %d", kt, size))
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// Port 1 is reserved and refuses connections.
	c, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if err == nil {
		c.Close()
		t.Fatal("NewRedisCache should fail without a server")
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrClosed) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func shortBackoff(t *testing.T) {
	t.Helper()
	attempts, delay := retryAttempts, retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryAttempts, retryBaseDelay = attempts, delay })
}

func TestRetryWithBackoff(t *testing.T) {
	shortBackoff(t)
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrClosed
	})
	if err != ErrClosed {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// Attempts run out
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != retryAttempts {
		t.Errorf("err = %v after %d calls, want ErrNetwork after %d", err, calls, retryAttempts)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
