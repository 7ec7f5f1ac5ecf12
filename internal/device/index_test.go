package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nerrad567/mastercontrol/internal/deviceid"
	"github.com/nerrad567/mastercontrol/internal/recordstore"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	return NewIndex(recordstore.New(recordstore.NewMemoryBackend()))
}

func TestIndex_ListEmpty(t *testing.T) {
	idx := newTestIndex(t)
	got := idx.List(context.Background())
	if got == nil {
		t.Fatal("List() = nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("List() len = %d, want 0", len(got))
	}
}

func TestIndex_RegisterFirstWriteWins(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	added, err := idx.Register(ctx, Record{DeviceID: "dev-1", Email: "a@x", IP: "1.1.1.1", Time: "t0"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !added {
		t.Error("first Register() added = false")
	}

	added, err = idx.Register(ctx, Record{DeviceID: "dev-1", Email: "b@x", IP: "2.2.2.2", Time: "t1"})
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if added {
		t.Error("second Register() added = true")
	}

	got := idx.List(ctx)
	if len(got) != 1 {
		t.Fatalf("List() len = %d, want 1", len(got))
	}
	want := Record{DeviceID: "dev-1", Email: "a@x", IP: "1.1.1.1", Time: "t0"}
	if got[0] != want {
		t.Errorf("List()[0] = %+v, want %+v", got[0], want)
	}
}

func TestIndex_PreservesRegistrationOrder(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if _, err := idx.Register(ctx, Record{DeviceID: id}); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
	}

	got := idx.List(ctx)
	if len(got) != len(ids) {
		t.Fatalf("List() len = %d, want %d", len(got), len(ids))
	}
	for i, id := range ids {
		if got[i].DeviceID != id {
			t.Errorf("List()[%d] = %s, want %s", i, got[i].DeviceID, id)
		}
	}
	if idx.Count(ctx) != 3 {
		t.Errorf("Count() = %d, want 3", idx.Count(ctx))
	}
}

func TestIndex_RegisterInvalidID(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.Register(context.Background(), Record{DeviceID: "../x"})
	if !errors.Is(err, deviceid.ErrInvalid) {
		t.Errorf("Register() error = %v, want deviceid.ErrInvalid", err)
	}
}

func TestIndex_ConcurrentRegistrations(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		id := fmt.Sprintf("dev-%02d", i)
		for j := 0; j < 2; j++ {
			go func() {
				defer wg.Done()
				if _, err := idx.Register(ctx, Record{DeviceID: id}); err != nil {
					t.Errorf("Register() error = %v", err)
				}
			}()
		}
	}
	wg.Wait()

	if got := idx.Count(ctx); got != n {
		t.Errorf("Count() = %d, want %d", got, n)
	}
}

func TestIndex_CorruptIndexReadsEmpty(t *testing.T) {
	b := recordstore.NewMemoryBackend()
	idx := NewIndex(recordstore.New(b))
	ctx := context.Background()

	if err := b.Save(ctx, IndexKey, []byte("garbage")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := idx.List(ctx); len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}

	// The next registration starts a fresh index.
	if added, err := idx.Register(ctx, Record{DeviceID: "dev-1"}); err != nil || !added {
		t.Fatalf("Register() = (%v, %v)", added, err)
	}
	if got := idx.List(ctx); len(got) != 1 {
		t.Errorf("List() len = %d, want 1", len(got))
	}
}
