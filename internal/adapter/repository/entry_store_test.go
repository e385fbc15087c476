package repository

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/myenglish/internal/entity"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestEntryStoreStartsEmptyOnMissingKey(t *testing.T) {
	store := NewEntryStore(newMemoryKV(), discardLogger())
	if got := store.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty collection, got %d entries", len(got))
	}
}

func TestEntryStoreStartsEmptyOnCorruptPayload(t *testing.T) {
	kv := newMemoryKV()
	if err := kv.Set(context.Background(), VocabKey, "{not json"); err != nil {
		t.Fatal(err)
	}

	store := NewEntryStore(kv, discardLogger())
	if got := store.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty collection, got %d entries", len(got))
	}
}

func TestEntryStoreLoadsExistingCollection(t *testing.T) {
	kv := newMemoryKV()
	seed := []entity.VocabEntry{{ID: "1", Word: "ephemeral", Level: entity.LevelNew, AddedAt: time.Now().UTC()}}
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(context.Background(), VocabKey, string(payload)); err != nil {
		t.Fatal(err)
	}

	store := NewEntryStore(kv, discardLogger())
	got := store.Snapshot()
	if len(got) != 1 || got[0].Word != "ephemeral" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestMutateInstallsNewStateImmediately(t *testing.T) {
	store := NewEntryStore(newMemoryKV(), discardLogger())

	store.Mutate(context.Background(), func(entries []entity.VocabEntry) []entity.VocabEntry {
		return append(entries, entity.VocabEntry{ID: "1", Word: "serendipity"})
	})

	got := store.Snapshot()
	if len(got) != 1 || got[0].Word != "serendipity" {
		t.Fatalf("unexpected snapshot after mutate: %+v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewEntryStore(newMemoryKV(), discardLogger())
	store.Mutate(context.Background(), func(entries []entity.VocabEntry) []entity.VocabEntry {
		return append(entries, entity.VocabEntry{ID: "1", Word: "original", Tags: []string{"a"}})
	})

	snap := store.Snapshot()
	snap[0].Word = "mutated"
	snap[0].Tags[0] = "b"

	got := store.Snapshot()
	if got[0].Word != "original" || got[0].Tags[0] != "a" {
		t.Fatalf("snapshot mutation leaked into the store: %+v", got[0])
	}
}

func TestFlushWritesCurrentCollection(t *testing.T) {
	kv := newMemoryKV()
	store := NewEntryStore(kv, discardLogger())
	store.Mutate(context.Background(), func(entries []entity.VocabEntry) []entity.VocabEntry {
		return append(entries, entity.VocabEntry{ID: "1", Word: "durable"})
	})

	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	value, ok, err := kv.Get(context.Background(), VocabKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted payload, ok=%v err=%v", ok, err)
	}
	var persisted []entity.VocabEntry
	if err := json.Unmarshal([]byte(value), &persisted); err != nil {
		t.Fatalf("unmarshal persisted payload: %v", err)
	}
	if len(persisted) != 1 || persisted[0].Word != "durable" {
		t.Fatalf("unexpected persisted collection: %+v", persisted)
	}
}

func TestHistoryLogPrependsAndCaps(t *testing.T) {
	log := NewHistoryLog(newMemoryKV(), discardLogger())

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < historyCap+5; i++ {
		log.Append(context.Background(), entity.HistoryRecord{
			Word: "w", Translation: "t", Time: base.Add(time.Duration(i) * time.Minute),
		})
	}

	records := log.Records()
	if len(records) != historyCap {
		t.Fatalf("expected %d records, got %d", historyCap, len(records))
	}
	if !records[0].Time.After(records[1].Time) {
		t.Fatal("expected newest-first ordering")
	}
}
