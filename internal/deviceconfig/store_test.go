package deviceconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nerrad567/mastercontrol/internal/deviceid"
	"github.com/nerrad567/mastercontrol/internal/recordstore"
)

func newTestStore(t *testing.T) (*Store, *recordstore.MemoryBackend) {
	t.Helper()
	b := recordstore.NewMemoryBackend()
	return NewStore(recordstore.New(b)), b
}

// compact returns doc without insignificant whitespace.
func compact(t *testing.T, doc Document) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		t.Fatalf("compacting %q: %v", doc, err)
	}
	return buf.String()
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	doc, ok := s.Get(ctx, "dev-1")
	if ok || doc != nil {
		t.Errorf("Get() = (%s, %v), want (nil, false)", doc, ok)
	}
	if got := compact(t, s.GetOrDefault(ctx, "dev-1")); got != `{"email":"","log":true,"kill":false}` {
		t.Errorf("GetOrDefault() = %s, want default", got)
	}
}

func TestStore_SetReplacesWholeDocument(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "dev-1", Document(`{"email":"x@y","kill":true}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "dev-1", Document(`{"log":false}`)); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}

	got, ok := s.Get(ctx, "dev-1")
	if !ok {
		t.Fatal("Get() ok = false after Set")
	}
	if c := compact(t, got); c != `{"log":false}` {
		t.Errorf("Get() = %s, want {\"log\":false} (no merge)", c)
	}
	if c := compact(t, s.GetOrDefault(ctx, "dev-1")); c != `{"log":false}` {
		t.Errorf("GetOrDefault() = %s", c)
	}
}

func TestStore_PreservesKeyOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   string
	}{
		{"reverse alphabetical", `{"kill":true,"email":"x"}`},
		{"nested", `{"z":{"b":1,"a":2},"targets":["b","a"],"interval":30}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Set(ctx, "dev-2", Document(tt.in)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, ok := s.Get(ctx, "dev-2")
			if !ok {
				t.Fatal("Get() ok = false")
			}
			if c := compact(t, got); c != tt.in {
				t.Errorf("Get() = %s, want %s", c, tt.in)
			}
		})
	}
}

func TestStore_StoredIndented(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "dev-5", Document(`{"b":1,"a":2}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	raw, err := b.Load(ctx, Key("dev-5"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := "{\n  \"b\": 1,\n  \"a\": 2\n}"; string(bytes.TrimSpace(raw)) != want {
		t.Errorf("stored = %q, want %q", raw, want)
	}
}

func TestStore_SetCopiesDocument(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	doc := Document(`{"a":1}`)
	if err := s.Set(ctx, "dev-6", doc); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	doc[5] = '9'
	got, _ := s.Get(ctx, "dev-6")
	if c := compact(t, got); c != `{"a":1}` {
		t.Errorf("Get() = %s, caller mutation leaked into store", c)
	}
}

func TestStore_NonObjectStoredIsAbsent(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()

	for id, raw := range map[string]string{
		"dev-3": `[1,2,3]`,
		"dev-4": `null`,
		"dev-7": `"text"`,
		"dev-8": `{"broken":`,
	} {
		if err := b.Save(ctx, Key(id), []byte(raw)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, ok := s.Get(ctx, id); ok {
			t.Errorf("Get(%s) ok = true for %s", id, raw)
		}
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"object", `{"a":1}`, false},
		{"padded object", " \n{\"a\":1}\n", false},
		{"empty object", `{}`, false},
		{"empty", ``, true},
		{"whitespace", `   `, true},
		{"array", `[1]`, true},
		{"null", `null`, true},
		{"string", `"x"`, true},
		{"number", `1`, true},
		{"truncated", `{"a":`, true},
		{"trailing garbage", `{"a":1}x`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(Document(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocument(%q) error = %v, wantErr %v", tt.doc, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNotObject) {
				t.Errorf("error = %v, want ErrNotObject", err)
			}
		})
	}
}

func TestStore_SetRejectsNonObject(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "dev-1", Document(`[1]`)); !errors.Is(err, ErrNotObject) {
		t.Errorf("Set() error = %v, want ErrNotObject", err)
	}
	if _, ok := s.Get(ctx, "dev-1"); ok {
		t.Error("rejected document was stored")
	}
}

func TestStore_InvalidID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "../index", Document(`{}`)); !errors.Is(err, deviceid.ErrInvalid) {
		t.Errorf("Set() error = %v, want deviceid.ErrInvalid", err)
	}
	if _, ok := s.Get(ctx, "../index"); ok {
		t.Error("Get() ok = true for invalid ID")
	}
}

func TestDefaultIsFreshCopy(t *testing.T) {
	d := Default()
	d[2] = 'X'
	if got := string(Default()); got != `{"email":"","log":true,"kill":false}` {
		t.Errorf("Default() = %s, shares state between calls", got)
	}
	if got := string(NotFoundDocument()); got != `{"error":"No config found"}` {
		t.Errorf("NotFoundDocument() = %s", got)
	}
}
