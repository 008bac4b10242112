package task

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/bucketlist-go/internal/kv"
)

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func TestStoreLoadMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory())

	c, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty collection, got %d tasks", c.Len())
	}
}

func TestStoreLoadLenientBlobs(t *testing.T) {
	blobs := map[string]string{"empty": "", "null": "null", "object": "{}"}
	for name, raw := range blobs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mem := kv.NewMemory()
			if err := mem.Set(ctx, DefaultKey, raw); err != nil {
				t.Fatal(err)
			}
			c, err := NewStore(mem).Load(ctx)
			if err != nil {
				t.Fatalf("Load(%q): %v", raw, err)
			}
			if c.Len() != 0 {
				t.Errorf("Load(%q): expected empty collection", raw)
			}
		})
	}
}

func TestStoreLoadMalformedBlob(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	if err := mem.Set(ctx, DefaultKey, "{not json"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	s := NewStore(mem, WithLogger(quietLogger(&buf)))
	_, err := s.Load(ctx)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Key != DefaultKey {
		t.Errorf("ParseError.Key: got %q", pe.Key)
	}
}

func TestStoreLoadReadFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	mem := kv.NewMemory()
	mem.BeforeGet = func(context.Context, string) error { return boom }

	_, err := NewStore(mem).Load(context.Background())

	var re *StorageReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("StorageReadError should wrap the provider error")
	}
}

func TestStoreSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := NewStore(mem, WithKey("bucket"))

	want := NewCollection(
		Task{ID: "1", Text: "buy milk"},
		Task{ID: "2", Text: "run a marathon", Completed: true},
	)
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Current().Equal(want) {
		t.Error("mirror should match the saved collection")
	}

	got, err := NewStore(mem, WithKey("bucket")).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip mismatch: got %v, want %v", got.Tasks(), want.Tasks())
	}

	raw, ok, _ := mem.Get(ctx, "bucket")
	if !ok || !strings.HasPrefix(raw, `{"1":`) {
		t.Errorf("unexpected blob %q", raw)
	}
}

func TestStoreSaveFailureKeepsMirror(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	var buf bytes.Buffer
	s := NewStore(mem, WithLogger(quietLogger(&buf)))

	before := NewCollection(Task{ID: "1", Text: "keep me"})
	if err := s.Save(ctx, before); err != nil {
		t.Fatalf("Save: %v", err)
	}

	boom := errors.New("quota exceeded")
	mem.BeforeSet = func(context.Context, string, string) error { return boom }

	err := s.Save(ctx, NewCollection(Task{ID: "2", Text: "lost"}))
	var we *StorageWriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("StorageWriteError should wrap the provider error")
	}
	if !s.Current().Equal(before) {
		t.Error("mirror changed after a failed save")
	}
	if !strings.Contains(buf.String(), "Saving tasks failed") {
		t.Errorf("failure should be logged, got %q", buf.String())
	}

	raw, _, _ := mem.Get(ctx, DefaultKey)
	var stored Collection
	if err := stored.UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatal(err)
	}
	if !stored.Equal(before) {
		t.Error("durable store changed after a failed save")
	}
}

func TestStoreStrictSchema(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	blob := `{"1":{"id":"1","text":"x","completed":false,"color":"red"}}`
	if err := mem.Set(ctx, DefaultKey, blob); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(mem).Load(ctx); err != nil {
		t.Fatalf("lenient Load: %v", err)
	}

	_, err := NewStore(mem, WithStrictSchema(true)).Load(ctx)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("strict Load: expected ParseError, got %v", err)
	}
}

func TestStoreFileProvider(t *testing.T) {
	ctx := context.Background()
	p, err := kv.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(p)
	defer s.Close()

	c, _ := Add(Collection{}, "see the pyramids", &seqIDs{})
	if err := s.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := NewStore(p).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Equal(c) {
		t.Error("file round trip mismatch")
	}
}
