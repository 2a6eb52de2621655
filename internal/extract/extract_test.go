package extract

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/desertthunder/spotlake/internal/storage"
	tu "github.com/desertthunder/spotlake/internal/testing"
)

var testLayout = storage.Layout{
	Landing: "raw_data/to_process/",
	Archive: "raw_data/processed/",
	Output:  "transformed_data/",
}

type mockNotifier struct {
	keys []string
	err  error
}

func (m *mockNotifier) PublishObjectCreated(_ context.Context, key string, _ int64) error {
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, key)
	return nil
}

func newTestExtractor(source *tu.MockSource, store storage.Store, notifier Notifier) *Extractor {
	e := NewExtractor(source, store, testLayout, "4Q8uTgbO8BRVVVqemK9KId", notifier, shared.NewLogger(&bytes.Buffer{}))
	e.now = func() time.Time { return time.Date(2024, 3, 6, 9, 30, 15, 123456000, time.UTC) }
	return e
}

func TestExtractorRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores Raw Object", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		source := &tu.MockSource{Body: tu.PlaylistJSON}

		key, err := newTestExtractor(source, store, nil).Run(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "raw_data/to_process/spotify_raw_2024-03-06 09:30:15.123456.json"
		if key != want {
			t.Errorf("expected key %q, got %q", want, key)
		}

		data, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("failed to read stored object: %v", err)
		}
		if !bytes.Equal(data, tu.PlaylistJSON) {
			t.Error("expected stored object to match upstream body")
		}
		if len(source.Calls) != 1 || source.Calls[0] != "4Q8uTgbO8BRVVVqemK9KId" {
			t.Errorf("expected one call for playlist, got %v", source.Calls)
		}
	})

	t.Run("Publishes Notification", func(t *testing.T) {
		notifier := &mockNotifier{}
		key, err := newTestExtractor(&tu.MockSource{Body: tu.PlaylistJSON}, storage.NewMemoryStore("test"), notifier).Run(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.keys) != 1 || notifier.keys[0] != key {
			t.Errorf("expected notification for %s, got %v", key, notifier.keys)
		}
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		source := &tu.MockSource{Err: shared.ErrAuthFailed}

		if _, err := newTestExtractor(source, store, nil).Run(ctx); !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}

		objects, _ := store.List(ctx, testLayout.Landing)
		if len(objects) != 0 {
			t.Errorf("expected nothing stored, got %v", objects)
		}
	})

	t.Run("Notification Failure", func(t *testing.T) {
		store := storage.NewMemoryStore("test")
		notifier := &mockNotifier{err: errors.New("nats down")}

		key, err := newTestExtractor(&tu.MockSource{Body: tu.PlaylistJSON}, store, notifier).Run(ctx)
		if err == nil {
			t.Fatal("expected notification error")
		}
		if ok, _ := store.Exists(ctx, key); !ok {
			t.Error("expected object to remain stored after notification failure")
		}
	})

	t.Run("Missing Playlist", func(t *testing.T) {
		e := newTestExtractor(&tu.MockSource{}, storage.NewMemoryStore("test"), nil)
		e.playlistID = ""

		if _, err := e.Run(ctx); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}
