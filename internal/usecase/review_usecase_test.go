package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/myenglish/internal/entity"
)

func reviewFixture(now time.Time) []entity.VocabEntry {
	hoursAgo := func(h int) *time.Time {
		t := now.Add(-time.Duration(h) * time.Hour)
		return &t
	}
	return []entity.VocabEntry{
		{ID: "due-old", Word: "ephemeral", Level: entity.LevelLearning, ReviewCount: 3, LastReviewedAt: hoursAgo(25)},
		{ID: "due-null", Word: "pragmatic", Level: entity.LevelLearning, ReviewCount: 1, LastReviewedAt: nil},
		{ID: "fresh", Word: "ubiquitous", Level: entity.LevelLearning, ReviewCount: 2, LastReviewedAt: hoursAgo(23)},
		{ID: "new", Word: "meticulous", Level: entity.LevelNew, ReviewCount: 0},
		{ID: "done", Word: "serendipity", Level: entity.LevelMastered, ReviewCount: 7, LastReviewedAt: hoursAgo(48)},
	}
}

func newReviewUsecaseAt(store *fakeEntryStore, now time.Time) ReviewUsecase {
	uc := NewReviewUsecase(store)
	impl := uc.(*reviewUsecase)
	impl.clock = func() time.Time { return now }
	return uc
}

func TestDueForReview(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	uc := newReviewUsecaseAt(newFakeEntryStore(reviewFixture(now)...), now)

	due, err := uc.DueForReview(context.Background())
	if err != nil {
		t.Fatalf("DueForReview returned error: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due entries, got %d: %+v", len(due), due)
	}
	if due[0].ID != "due-old" || due[1].ID != "due-null" {
		t.Errorf("expected collection order preserved, got %q then %q", due[0].ID, due[1].ID)
	}
}

func TestDueForReviewExactBoundary(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	last := now.Add(-24 * time.Hour)
	store := newFakeEntryStore(entity.VocabEntry{ID: "x", Level: entity.LevelLearning, LastReviewedAt: &last})
	uc := newReviewUsecaseAt(store, now)

	due, _ := uc.DueForReview(context.Background())
	if len(due) != 1 {
		t.Fatalf("entry reviewed exactly 24h ago should be due, got %d", len(due))
	}
}

func TestStartLearning(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore(reviewFixture(now)...)
	uc := newReviewUsecaseAt(store, now)

	updated, err := uc.StartLearning(context.Background(), "new")
	if err != nil {
		t.Fatalf("StartLearning returned error: %v", err)
	}
	if updated.Level != entity.LevelLearning {
		t.Errorf("expected level learning, got %q", updated.Level)
	}
	if updated.ReviewCount != 1 {
		t.Errorf("expected review count 1, got %d", updated.ReviewCount)
	}
	if updated.LastReviewedAt == nil || !updated.LastReviewedAt.Equal(now) {
		t.Errorf("expected lastReviewedAt %v, got %v", now, updated.LastReviewedAt)
	}
}

func TestStartLearningGuardsNonNewEntries(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	uc := newReviewUsecaseAt(newFakeEntryStore(reviewFixture(now)...), now)

	if _, err := uc.StartLearning(context.Background(), "fresh"); !errors.Is(err, entity.ErrEntryNotNew) {
		t.Fatalf("expected ErrEntryNotNew for learning entry, got %v", err)
	}
	if _, err := uc.StartLearning(context.Background(), "missing"); !errors.Is(err, entity.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestSessionSnapshotIsFixed(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore(reviewFixture(now)...)
	uc := newReviewUsecaseAt(store, now)

	session, err := uc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if len(session.Queue) != 2 {
		t.Fatalf("expected queue of 2, got %d", len(session.Queue))
	}

	// New due entries appearing after start must not join the running session.
	store.Mutate(context.Background(), func(entries []entity.VocabEntry) []entity.VocabEntry {
		return append(entries, entity.VocabEntry{ID: "late", Level: entity.LevelLearning})
	})

	outcome, err := uc.RecordOutcome(context.Background(), session.ID, false)
	if err != nil {
		t.Fatalf("RecordOutcome returned error: %v", err)
	}
	if outcome.Completed {
		t.Error("session should not be completed after first outcome")
	}
	if outcome.Remaining != 1 {
		t.Errorf("expected 1 remaining, got %d", outcome.Remaining)
	}
}

func TestRecordOutcomeTransitionsAndCounts(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore(reviewFixture(now)...)
	uc := newReviewUsecaseAt(store, now)

	session, _ := uc.StartSession(context.Background())

	first, err := uc.RecordOutcome(context.Background(), session.ID, true)
	if err != nil {
		t.Fatalf("RecordOutcome returned error: %v", err)
	}
	if first.Entry.Level != entity.LevelMastered {
		t.Errorf("expected mastered, got %q", first.Entry.Level)
	}
	if first.Entry.ReviewCount != 4 {
		t.Errorf("expected review count to increment to 4, got %d", first.Entry.ReviewCount)
	}

	second, err := uc.RecordOutcome(context.Background(), session.ID, false)
	if err != nil {
		t.Fatalf("RecordOutcome returned error: %v", err)
	}
	if second.Entry.Level != entity.LevelLearning {
		t.Errorf("expected still learning, got %q", second.Entry.Level)
	}
	if !second.Completed {
		t.Error("expected session completed after last outcome")
	}

	if _, err := uc.RecordOutcome(context.Background(), session.ID, true); !errors.Is(err, entity.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
}

func TestRecordOutcomeSkipsDeletedEntry(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore(reviewFixture(now)...)
	uc := newReviewUsecaseAt(store, now)

	session, _ := uc.StartSession(context.Background())
	store.Mutate(context.Background(), func(entries []entity.VocabEntry) []entity.VocabEntry {
		var next []entity.VocabEntry
		for _, e := range entries {
			if e.ID != "due-old" {
				next = append(next, e)
			}
		}
		return next
	})

	outcome, err := uc.RecordOutcome(context.Background(), session.ID, true)
	if err != nil {
		t.Fatalf("RecordOutcome returned error: %v", err)
	}
	if outcome.Entry != nil {
		t.Errorf("expected nil entry for deleted card, got %+v", outcome.Entry)
	}
	if outcome.Remaining != 1 {
		t.Errorf("expected cursor to advance past deleted card, got remaining=%d", outcome.Remaining)
	}
}

func TestRecordOutcomeUnknownSession(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	uc := newReviewUsecaseAt(newFakeEntryStore(), now)

	if _, err := uc.RecordOutcome(context.Background(), "nope", true); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestForecastBucketsAndCaps(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	var entries []entity.VocabEntry
	add := func(id string, level entity.Level, count int) {
		entries = append(entries, entity.VocabEntry{ID: id, Word: id, Level: level, ReviewCount: count})
	}
	for i := 0; i < 6; i++ {
		add("once-"+string(rune('a'+i)), entity.LevelLearning, 1)
	}
	add("twice", entity.LevelLearning, 2)
	add("thrice", entity.LevelLearning, 3)
	add("five", entity.LevelLearning, 5)
	add("ignored-new", entity.LevelNew, 1)
	add("ignored-mastered", entity.LevelMastered, 2)

	uc := newReviewUsecaseAt(newFakeEntryStore(entries...), now)

	buckets, err := uc.Forecast(context.Background())
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if buckets[0].Label != "明天" || len(buckets[0].Entries) != 4 {
		t.Errorf("expected 明天 capped at 4, got %q with %d", buckets[0].Label, len(buckets[0].Entries))
	}
	if buckets[1].Label != "后天" || len(buckets[1].Entries) != 1 {
		t.Errorf("expected 后天 with 1, got %q with %d", buckets[1].Label, len(buckets[1].Entries))
	}
	if buckets[2].Label != "7天后" || len(buckets[2].Entries) != 2 {
		t.Errorf("expected 7天后 with 2, got %q with %d", buckets[2].Label, len(buckets[2].Entries))
	}
}

func TestForecastOmitsEmptyBuckets(t *testing.T) {
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore(entity.VocabEntry{ID: "x", Level: entity.LevelLearning, ReviewCount: 2})
	uc := newReviewUsecaseAt(store, now)

	buckets, _ := uc.Forecast(context.Background())
	if len(buckets) != 1 || buckets[0].Label != "后天" {
		t.Fatalf("expected only 后天 bucket, got %+v", buckets)
	}
}
