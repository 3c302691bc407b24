package serverstate

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rs, err := NewRedisStore(mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}

	prev := active
	UseStore(rs)
	defer UseStore(prev)

	if got := GetState(); got != "not_ready" {
		t.Fatalf("initial state = %q; want %q", got, "not_ready")
	}

	SetState("ready")
	if got := GetState(); got != "ready" {
		t.Fatalf("state after SetState = %q; want %q", got, "ready")
	}

	// A second store connecting to the same instance sees the
	// persisted state.
	rs2, err := NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	if st := rs2.Load(); st.Status != "ready" {
		t.Fatalf("persisted state = %#v; want status %q", st, "ready")
	}
}

func TestRedisStoreDrainVisibleAcrossReplicas(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rs, err := NewRedisStore(mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}

	prev := active
	UseStore(rs)
	defer UseStore(prev)

	StartDrain()

	// A replica sharing the store observes the drain, not just the
	// status string.
	rs2, err := NewRedisStore(mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	st := rs2.Load()
	if st.Status != "draining" || !st.Draining {
		t.Fatalf("replica state = %#v; want draining", st)
	}

	UseStore(rs2)
	if !IsDraining() {
		t.Fatalf("IsDraining() = false on replica sharing the store")
	}
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	if _, err := NewRedisStore("memcached://localhost"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	if _, err := NewRedisStore("redis://localhost:6379/notadb"); err == nil {
		t.Fatalf("expected error for invalid database")
	}
}
