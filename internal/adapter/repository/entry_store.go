package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/repository"
)

// VocabKey is the persistence key for the vocabulary collection payload.
const VocabKey = "me-vocab-v4"

type kvEntryStore struct {
	kv     repository.KVStore
	logger *logrus.Logger

	mu      sync.RWMutex
	entries []entity.VocabEntry
}

// NewEntryStore loads the collection from the KV store once and serves it
// from memory afterwards. A missing key or an unreadable payload yields an
// empty collection, never an error.
func NewEntryStore(kv repository.KVStore, logger *logrus.Logger) repository.EntryStore {
	s := &kvEntryStore{kv: kv, logger: logger}
	s.entries = s.load(context.Background())
	return s
}

func (s *kvEntryStore) load(ctx context.Context) []entity.VocabEntry {
	value, ok, err := s.kv.Get(ctx, VocabKey)
	if err != nil {
		s.logger.WithError(err).Warn("load vocab collection failed, starting empty")
		return nil
	}
	if !ok {
		return nil
	}
	var entries []entity.VocabEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		s.logger.WithError(err).Warn("vocab collection payload unreadable, starting empty")
		return nil
	}
	return entries
}

func (s *kvEntryStore) Snapshot() []entity.VocabEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

func (s *kvEntryStore) Mutate(ctx context.Context, fn func(entries []entity.VocabEntry) []entity.VocabEntry) {
	s.mu.Lock()
	next := fn(cloneEntries(s.entries))
	s.entries = next
	payload, err := json.Marshal(next)
	s.mu.Unlock()
	if err != nil {
		s.logger.WithError(err).Error("marshal vocab collection failed, skipping persist")
		return
	}

	// The write is durable best-effort: memory already holds the new state
	// and a storage failure must not surface to the caller.
	go func() {
		if err := s.kv.Set(context.Background(), VocabKey, string(payload)); err != nil {
			s.logger.WithError(err).Warn("persist vocab collection failed")
		}
	}()
}

func (s *kvEntryStore) Flush(ctx context.Context) error {
	s.mu.RLock()
	payload, err := json.Marshal(s.entries)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, VocabKey, string(payload))
}

func cloneEntries(entries []entity.VocabEntry) []entity.VocabEntry {
	if entries == nil {
		return []entity.VocabEntry{}
	}
	result := make([]entity.VocabEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Clone())
	}
	return result
}
