package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/myenglish/internal/adapter/completion"
	"github.com/eslsoft/myenglish/internal/entity"
)

type fakeHistoryLog struct {
	mu      sync.Mutex
	records []entity.HistoryRecord
}

func (l *fakeHistoryLog) Records() []entity.HistoryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entity.HistoryRecord{}, l.records...)
}

func (l *fakeHistoryLog) Append(ctx context.Context, rec entity.HistoryRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]entity.HistoryRecord{rec}, l.records...)
}

type fakeCompletionClient struct {
	reply string
	err   error
	calls int
}

func (c *fakeCompletionClient) Complete(ctx context.Context, req completion.Request) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.reply, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newLookupForTest(client completion.Client, store *fakeEntryStore) (LookupUsecase, *fakeHistoryLog) {
	history := &fakeHistoryLog{}
	vocab := NewVocabUsecase(store)
	uc := NewLookupUsecase(client, completion.NewDispatcher(), history, vocab, quietLogger())
	impl := uc.(*lookupUsecase)
	impl.clock = func() time.Time { return time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC) }
	// Run scheduled work synchronously so assertions see it immediately.
	impl.schedule = func(d time.Duration, fn func()) { fn() }
	return uc, history
}

func TestTranslateParsesFencedJSON(t *testing.T) {
	client := &fakeCompletionClient{reply: "```json\n{\"word\":\"ephemeral\",\"isEnglish\":true,\"isWord\":true,\"translation\":\"短暂的\",\"phonetic\":\"/ɪˈfem.ər.əl/\",\"pos\":\"adj.\"}\n```"}
	store := newFakeEntryStore()
	uc, history := newLookupForTest(client, store)

	result, err := uc.Translate(context.Background(), "ephemeral")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if result.Word != "ephemeral" || result.Translation != "短暂的" || !result.IsWord {
		t.Fatalf("unexpected result: %+v", result)
	}

	records := history.Records()
	if len(records) != 1 || records[0].Word != "ephemeral" {
		t.Fatalf("expected one history record, got %+v", records)
	}

	// English word lookups collect themselves automatically.
	entries := store.Snapshot()
	if len(entries) != 1 || entries[0].Word != "ephemeral" || entries[0].Source != entity.SourceAuto {
		t.Fatalf("expected auto-collected entry, got %+v", entries)
	}
}

func TestTranslateFallbackOnUnparseableReply(t *testing.T) {
	raw := strings.Repeat("很", 250)
	client := &fakeCompletionClient{reply: raw}
	store := newFakeEntryStore()
	uc, _ := newLookupForTest(client, store)

	result, err := uc.Translate(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if result.IsWord {
		t.Error("fallback result must not be treated as a word")
	}
	if !result.IsEnglish {
		t.Error("expected latin-only query to be detected as English")
	}
	if got := len([]rune(result.Translation)); got != 200 {
		t.Errorf("expected translation capped at 200 runes, got %d", got)
	}
	if result.Word != "hello world" {
		t.Errorf("expected query echoed back, got %q", result.Word)
	}
	if len(store.Snapshot()) != 0 {
		t.Error("fallback result must not be auto-collected")
	}
}

func TestTranslateFallbackNonEnglishQuery(t *testing.T) {
	client := &fakeCompletionClient{reply: "not json at all"}
	uc, _ := newLookupForTest(client, newFakeEntryStore())

	result, err := uc.Translate(context.Background(), "你好")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if result.IsEnglish {
		t.Error("expected Chinese query not detected as English")
	}
}

func TestTranslateEmptyQuery(t *testing.T) {
	uc, _ := newLookupForTest(&fakeCompletionClient{}, newFakeEntryStore())

	if _, err := uc.Translate(context.Background(), "  "); !errors.Is(err, entity.ErrEmptyLookupQuery) {
		t.Fatalf("expected ErrEmptyLookupQuery, got %v", err)
	}
}

func TestTranslateCancellationIsNotFailure(t *testing.T) {
	client := &fakeCompletionClient{err: context.Canceled}
	uc, history := newLookupForTest(client, newFakeEntryStore())

	_, err := uc.Translate(context.Background(), "ephemeral")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled passed through, got %v", err)
	}
	if len(history.Records()) != 0 {
		t.Error("cancelled lookup must not write history")
	}
}

func TestTranslateSkipsAutoCollectForSentences(t *testing.T) {
	client := &fakeCompletionClient{reply: `{"word":"How are you","isEnglish":true,"isWord":false,"translation":"你好吗"}`}
	store := newFakeEntryStore()
	uc, _ := newLookupForTest(client, store)

	if _, err := uc.Translate(context.Background(), "How are you"); err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if len(store.Snapshot()) != 0 {
		t.Error("sentence lookup must not be auto-collected")
	}
}

func TestTranslateAutoCollectDuplicateIsSilent(t *testing.T) {
	client := &fakeCompletionClient{reply: `{"word":"Ephemeral","isEnglish":true,"isWord":true,"translation":"短暂的"}`}
	store := newFakeEntryStore(entity.VocabEntry{ID: "1", Word: "ephemeral"})
	uc, _ := newLookupForTest(client, store)

	if _, err := uc.Translate(context.Background(), "Ephemeral"); err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got := len(store.Snapshot()); got != 1 {
		t.Fatalf("expected collection unchanged, got %d entries", got)
	}
}

func TestTranslateNewRequestCancelsInflight(t *testing.T) {
	client := &blockingClient{started: make(chan struct{})}
	store := newFakeEntryStore()
	history := &fakeHistoryLog{}
	uc := NewLookupUsecase(client, completion.NewDispatcher(), history, NewVocabUsecase(store), quietLogger())
	impl := uc.(*lookupUsecase)
	impl.schedule = func(d time.Duration, fn func()) { fn() }

	errCh := make(chan error, 1)
	go func() {
		_, err := uc.Translate(context.Background(), "slow")
		errCh <- err
	}()
	<-client.started

	if _, err := uc.Translate(context.Background(), "fast"); err != nil {
		t.Fatalf("second Translate returned error: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected first request cancelled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first request did not finish after being superseded")
	}
}

// blockingClient hangs the first request until its context is cancelled;
// later requests answer immediately.
type blockingClient struct {
	started chan struct{}
	calls   int32
}

func (c *blockingClient) Complete(ctx context.Context, req completion.Request) (string, error) {
	if atomic.AddInt32(&c.calls, 1) == 1 {
		close(c.started)
		<-ctx.Done()
		return "", ctx.Err()
	}
	return `{"word":"fast","isWord":false}`, nil
}
