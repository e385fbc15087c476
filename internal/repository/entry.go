package repository

import (
	"context"

	"github.com/eslsoft/myenglish/internal/entity"
)

// EntryStore holds the in-memory vocabulary collection and replicates it to
// durable storage. The in-memory state is the session authority; writes behind
// it are fire-and-forget.
type EntryStore interface {
	// Snapshot returns a copy of the whole collection in storage order.
	Snapshot() []entity.VocabEntry
	// Mutate applies fn to the latest collection state under the store lock
	// and installs its return value as the new collection. fn must not block.
	Mutate(ctx context.Context, fn func(entries []entity.VocabEntry) []entity.VocabEntry)
	// Flush writes the current collection to durable storage synchronously.
	// Short-lived callers use it before exiting.
	Flush(ctx context.Context) error
}

// HistoryLog keeps the capped, newest-first translation lookup log.
type HistoryLog interface {
	Records() []entity.HistoryRecord
	Append(ctx context.Context, rec entity.HistoryRecord)
}

// ListEntryQuery carries the bound filter and ordering for listing entries.
// Zero values pass everything; OrderKey defaults to added_at descending.
type ListEntryQuery struct {
	Level   string
	Tag     string
	Keyword string

	OrderKey  string
	OrderDesc bool
}
