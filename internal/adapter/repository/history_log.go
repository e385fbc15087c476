package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/repository"
)

// HistoryKey is the persistence key for the lookup history payload.
const HistoryKey = "me-hist-v2"

// historyCap bounds the log; older records fall off the end.
const historyCap = 40

type kvHistoryLog struct {
	kv     repository.KVStore
	logger *logrus.Logger

	mu      sync.RWMutex
	records []entity.HistoryRecord
}

// NewHistoryLog loads the lookup history from the KV store once and keeps the
// newest-first, capped log in memory afterwards.
func NewHistoryLog(kv repository.KVStore, logger *logrus.Logger) repository.HistoryLog {
	l := &kvHistoryLog{kv: kv, logger: logger}
	l.records = l.load(context.Background())
	return l
}

func (l *kvHistoryLog) load(ctx context.Context) []entity.HistoryRecord {
	value, ok, err := l.kv.Get(ctx, HistoryKey)
	if err != nil {
		l.logger.WithError(err).Warn("load lookup history failed, starting empty")
		return nil
	}
	if !ok {
		return nil
	}
	var records []entity.HistoryRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		l.logger.WithError(err).Warn("lookup history payload unreadable, starting empty")
		return nil
	}
	if len(records) > historyCap {
		records = records[:historyCap]
	}
	return records
}

func (l *kvHistoryLog) Records() []entity.HistoryRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]entity.HistoryRecord{}, l.records...)
}

func (l *kvHistoryLog) Append(ctx context.Context, rec entity.HistoryRecord) {
	l.mu.Lock()
	next := append([]entity.HistoryRecord{rec}, l.records...)
	if len(next) > historyCap {
		next = next[:historyCap]
	}
	l.records = next
	payload, err := json.Marshal(next)
	l.mu.Unlock()
	if err != nil {
		l.logger.WithError(err).Error("marshal lookup history failed, skipping persist")
		return
	}

	go func() {
		if err := l.kv.Set(context.Background(), HistoryKey, string(payload)); err != nil {
			l.logger.WithError(err).Warn("persist lookup history failed")
		}
	}()
}
