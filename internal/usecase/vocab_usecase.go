package usecase

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/repository"
)

// TagAll is the sentinel tag that matches every entry.
const TagAll = "全部"

// VocabUsecase encapsulates business logic for the vocabulary collection:
// single and bulk ingestion, dedup, filtering and stats.
type VocabUsecase interface {
	AddSingle(ctx context.Context, draft entity.EntryDraft, source entity.Source) (*entity.VocabEntry, error)
	ParseImportBatch(ctx context.Context, raw string) ([]entity.ImportCandidate, error)
	ConfirmImportBatch(ctx context.Context, candidates []entity.ImportCandidate) (int, error)
	ListEntries(ctx context.Context, query *repository.ListEntryQuery) ([]entity.VocabEntry, error)
	GetEntry(ctx context.Context, id string) (*entity.VocabEntry, error)
	AddTag(ctx context.Context, id, tag string) (*entity.VocabEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	Stats(ctx context.Context) (*entity.VocabStats, error)
}

// NewVocabUsecase wires the entry store with default behaviour.
func NewVocabUsecase(store repository.EntryStore) VocabUsecase {
	return &vocabUsecase{
		store:    store,
		clock:    time.Now,
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

type vocabUsecase struct {
	store    repository.EntryStore
	clock    func() time.Time
	collator *collate.Collator
}

func (u *vocabUsecase) AddSingle(ctx context.Context, draft entity.EntryDraft, source entity.Source) (*entity.VocabEntry, error) {
	word := strings.TrimSpace(draft.Word)
	if word == "" {
		return nil, entity.ErrInvalidEntryWord
	}

	var (
		created   *entity.VocabEntry
		duplicate bool
	)
	u.store.Mutate(ctx, func(entries []entity.VocabEntry) []entity.VocabEntry {
		if _, ok := findByWord(entries, word); ok {
			duplicate = true
			return entries
		}
		e := entity.VocabEntry{
			Word:        word,
			Phonetic:    draft.Phonetic,
			Pos:         draft.Pos,
			Translation: draft.Translation,
			Definitions: draft.Definitions,
			Examples:    draft.Examples,
			Tags:        draft.Tags,
			Source:      source,
		}
		e.Normalize(u.clock())
		created = &e
		return append([]entity.VocabEntry{e}, entries...)
	})
	if duplicate {
		return nil, entity.ErrDuplicateEntry
	}
	return created, nil
}

var importSeparator = regexp.MustCompile(`[,，\t]`)

func (u *vocabUsecase) ParseImportBatch(ctx context.Context, raw string) ([]entity.ImportCandidate, error) {
	entries := u.store.Snapshot()

	candidates := make([]entity.ImportCandidate, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := importSeparator.Split(line, -1)
		word := strings.TrimSpace(parts[0])
		if word == "" {
			continue
		}
		meaning := ""
		if len(parts) > 1 {
			meaning = strings.TrimSpace(parts[1])
		}
		_, dup := findByWord(entries, word)
		candidates = append(candidates, entity.ImportCandidate{
			Word:      word,
			Meaning:   meaning,
			Duplicate: dup,
			Checked:   !dup,
		})
	}
	return candidates, nil
}

func (u *vocabUsecase) ConfirmImportBatch(ctx context.Context, candidates []entity.ImportCandidate) (int, error) {
	inserted := 0
	u.store.Mutate(ctx, func(entries []entity.VocabEntry) []entity.VocabEntry {
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			seen[entity.WordKey(e.Word)] = struct{}{}
		}

		now := u.clock()
		block := make([]entity.VocabEntry, 0, len(candidates))
		for _, c := range candidates {
			if !c.Checked || c.Duplicate {
				continue
			}
			key := entity.WordKey(c.Word)
			if key == "" {
				continue
			}
			// Re-check against the live collection and earlier lines of the
			// same batch: the first occurrence wins.
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			e := entity.VocabEntry{
				Word:        strings.TrimSpace(c.Word),
				Translation: c.Meaning,
				Source:      entity.SourceImport,
			}
			if c.Meaning != "" {
				e.Definitions = []entity.Definition{{Meaning: c.Meaning}}
			}
			e.Normalize(now)
			block = append(block, e)
		}
		inserted = len(block)
		return append(block, entries...)
	})
	return inserted, nil
}

func (u *vocabUsecase) ListEntries(ctx context.Context, query *repository.ListEntryQuery) ([]entity.VocabEntry, error) {
	entries := u.store.Snapshot()
	if query == nil {
		query = &repository.ListEntryQuery{}
	}

	level := strings.ToLower(strings.TrimSpace(query.Level))
	tag := strings.TrimSpace(query.Tag)
	keyword := strings.ToLower(strings.TrimSpace(query.Keyword))

	filtered := lo.Filter(entries, func(e entity.VocabEntry, _ int) bool {
		if level != "" && level != "all" && string(e.Level) != level {
			return false
		}
		if tag != "" && tag != TagAll && !lo.Contains(e.Tags, tag) {
			return false
		}
		if keyword != "" {
			if !strings.Contains(strings.ToLower(e.Word), keyword) && !strings.Contains(e.Translation, keyword) {
				return false
			}
		}
		return true
	})

	u.sortEntries(filtered, query.OrderKey, query.OrderDesc)
	return filtered, nil
}

// sortEntries orders entries stably; ties keep collection order.
func (u *vocabUsecase) sortEntries(entries []entity.VocabEntry, key string, desc bool) {
	less := func(i, j int) bool { return entries[i].AddedAt.After(entries[j].AddedAt) }
	switch key {
	case "word":
		less = func(i, j int) bool {
			cmp := u.collator.CompareString(entries[i].Word, entries[j].Word)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
	case "review_count":
		less = func(i, j int) bool {
			if desc {
				return entries[i].ReviewCount > entries[j].ReviewCount
			}
			return entries[i].ReviewCount < entries[j].ReviewCount
		}
	default: // added_at
		if !desc {
			less = func(i, j int) bool { return entries[i].AddedAt.Before(entries[j].AddedAt) }
		}
	}
	sort.SliceStable(entries, less)
}

func (u *vocabUsecase) GetEntry(ctx context.Context, id string) (*entity.VocabEntry, error) {
	for _, e := range u.store.Snapshot() {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, entity.ErrEntryNotFound
}

func (u *vocabUsecase) AddTag(ctx context.Context, id, tag string) (*entity.VocabEntry, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, entity.ErrInvalidEntryWord
	}

	var updated *entity.VocabEntry
	u.store.Mutate(ctx, func(entries []entity.VocabEntry) []entity.VocabEntry {
		for i := range entries {
			if entries[i].ID != id {
				continue
			}
			if !lo.Contains(entries[i].Tags, tag) {
				entries[i].Tags = append(entries[i].Tags, tag)
			}
			e := entries[i].Clone()
			updated = &e
			break
		}
		return entries
	})
	if updated == nil {
		return nil, entity.ErrEntryNotFound
	}
	return updated, nil
}

func (u *vocabUsecase) DeleteEntry(ctx context.Context, id string) error {
	found := false
	u.store.Mutate(ctx, func(entries []entity.VocabEntry) []entity.VocabEntry {
		next := lo.Filter(entries, func(e entity.VocabEntry, _ int) bool {
			if e.ID == id {
				found = true
				return false
			}
			return true
		})
		return next
	})
	if !found {
		return entity.ErrEntryNotFound
	}
	return nil
}

func (u *vocabUsecase) Stats(ctx context.Context) (*entity.VocabStats, error) {
	entries := u.store.Snapshot()
	byLevel := lo.CountValuesBy(entries, func(e entity.VocabEntry) entity.Level { return e.Level })

	stats := &entity.VocabStats{
		Total:    len(entries),
		New:      byLevel[entity.LevelNew],
		Learning: byLevel[entity.LevelLearning],
		Mastered: byLevel[entity.LevelMastered],
	}
	if stats.Total > 0 {
		stats.MasteredPercent = int(float64(stats.Mastered)/float64(stats.Total)*100 + 0.5)
	}
	return stats, nil
}

func findByWord(entries []entity.VocabEntry, word string) (*entity.VocabEntry, bool) {
	key := entity.WordKey(word)
	if key == "" {
		return nil, false
	}
	for i := range entries {
		if entity.WordKey(entries[i].Word) == key {
			return &entries[i], true
		}
	}
	return nil, false
}
