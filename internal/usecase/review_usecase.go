package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/repository"
)

// reviewInterval is the sliding window after which a learning entry comes due
// again. Elapsed wall-clock time, not calendar days.
const reviewInterval = 24 * time.Hour

// ReviewUsecase drives the spaced review flow: due computation, flashcard
// sessions and the upcoming forecast.
type ReviewUsecase interface {
	DueForReview(ctx context.Context) ([]entity.VocabEntry, error)
	StartLearning(ctx context.Context, id string) (*entity.VocabEntry, error)
	StartSession(ctx context.Context) (*entity.ReviewSession, error)
	RecordOutcome(ctx context.Context, sessionID string, mastered bool) (*entity.ReviewOutcome, error)
	Forecast(ctx context.Context) ([]entity.ForecastBucket, error)
}

// NewReviewUsecase wires the entry store with default behaviour.
func NewReviewUsecase(store repository.EntryStore) ReviewUsecase {
	return &reviewUsecase{
		store:    store,
		clock:    time.Now,
		sessions: make(map[string]*entity.ReviewSession),
	}
}

type reviewUsecase struct {
	store repository.EntryStore
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]*entity.ReviewSession
}

func (u *reviewUsecase) DueForReview(ctx context.Context) ([]entity.VocabEntry, error) {
	now := u.clock()
	var due []entity.VocabEntry
	for _, e := range u.store.Snapshot() {
		if isDue(e, now) {
			due = append(due, e)
		}
	}
	return due, nil
}

func isDue(e entity.VocabEntry, now time.Time) bool {
	if e.Level != entity.LevelLearning {
		return false
	}
	if e.LastReviewedAt == nil {
		return true
	}
	return now.Sub(*e.LastReviewedAt) >= reviewInterval
}

func (u *reviewUsecase) StartLearning(ctx context.Context, id string) (*entity.VocabEntry, error) {
	var (
		updated *entity.VocabEntry
		wrong   bool
	)
	now := u.clock()
	u.store.Mutate(ctx, func(entries []entity.VocabEntry) []entity.VocabEntry {
		for i := range entries {
			if entries[i].ID != id {
				continue
			}
			if entries[i].Level != entity.LevelNew {
				wrong = true
				return entries
			}
			entries[i].Level = entity.LevelLearning
			entries[i].ReviewCount = 1
			t := now
			entries[i].LastReviewedAt = &t
			e := entries[i].Clone()
			updated = &e
			return entries
		}
		return entries
	})
	if wrong {
		return nil, entity.ErrEntryNotNew
	}
	if updated == nil {
		return nil, entity.ErrEntryNotFound
	}
	return updated, nil
}

func (u *reviewUsecase) StartSession(ctx context.Context) (*entity.ReviewSession, error) {
	due, err := u.DueForReview(ctx)
	if err != nil {
		return nil, err
	}
	if due == nil {
		due = []entity.VocabEntry{}
	}

	session := &entity.ReviewSession{
		ID:        uuid.NewString(),
		Queue:     due,
		StartedAt: u.clock(),
	}
	u.mu.Lock()
	u.sessions[session.ID] = session
	u.mu.Unlock()

	copy := *session
	copy.Queue = append([]entity.VocabEntry{}, session.Queue...)
	return &copy, nil
}

func (u *reviewUsecase) RecordOutcome(ctx context.Context, sessionID string, mastered bool) (*entity.ReviewOutcome, error) {
	u.mu.Lock()
	session, ok := u.sessions[sessionID]
	if !ok {
		u.mu.Unlock()
		return nil, entity.ErrSessionNotFound
	}
	if session.Finished() {
		u.mu.Unlock()
		return nil, entity.ErrSessionFinished
	}
	current := session.Queue[session.Cursor]
	session.Cursor++
	completed := session.Finished()
	remaining := len(session.Queue) - session.Cursor
	u.mu.Unlock()

	now := u.clock()
	var updated *entity.VocabEntry
	u.store.Mutate(ctx, func(entries []entity.VocabEntry) []entity.VocabEntry {
		for i := range entries {
			if entries[i].ID != current.ID {
				continue
			}
			if mastered {
				entries[i].Level = entity.LevelMastered
			} else {
				entries[i].Level = entity.LevelLearning
			}
			entries[i].ReviewCount++
			t := now
			entries[i].LastReviewedAt = &t
			e := entries[i].Clone()
			updated = &e
			break
		}
		// An entry deleted mid-session just advances the cursor.
		return entries
	})

	return &entity.ReviewOutcome{Entry: updated, Remaining: remaining, Completed: completed}, nil
}

// forecastBuckets: learning entries grouped by review count, display capped.
var forecastBuckets = []struct {
	label   string
	matches func(count int) bool
	cap     int
}{
	{"明天", func(c int) bool { return c == 1 }, 4},
	{"后天", func(c int) bool { return c == 2 }, 3},
	{"7天后", func(c int) bool { return c >= 3 }, 2},
}

func (u *reviewUsecase) Forecast(ctx context.Context) ([]entity.ForecastBucket, error) {
	entries := u.store.Snapshot()

	var result []entity.ForecastBucket
	for _, b := range forecastBuckets {
		bucket := entity.ForecastBucket{Label: b.label}
		for _, e := range entries {
			if len(bucket.Entries) >= b.cap {
				break
			}
			if e.Level == entity.LevelLearning && b.matches(e.ReviewCount) {
				bucket.Entries = append(bucket.Entries, e)
			}
		}
		if len(bucket.Entries) > 0 {
			result = append(result, bucket)
		}
	}
	return result, nil
}
