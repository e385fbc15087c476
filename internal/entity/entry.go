package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level represents how far a vocabulary entry has progressed in learning.
type Level string

const (
	LevelUnspecified Level = ""
	LevelNew         Level = "new"
	LevelLearning    Level = "learning"
	LevelMastered    Level = "mastered"
)

// ParseLevel converts an arbitrary string into a supported Level value.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return LevelNew
	case "learning":
		return LevelLearning
	case "mastered":
		return LevelMastered
	default:
		return LevelUnspecified
	}
}

// Source records how an entry entered the vocabulary collection.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// NormalizeSource ensures the source falls back to a supported value (defaults to manual).
func NormalizeSource(s Source) Source {
	switch s {
	case SourceAuto, SourceManual, SourceImport:
		return s
	default:
		return SourceManual
	}
}

// Definition is a single dictionary sense of a word.
type Definition struct {
	Pos     string `json:"pos"`
	Meaning string `json:"meaning"`
}

// Example pairs an English sentence with its Chinese rendering.
type Example struct {
	En string `json:"en"`
	Zh string `json:"zh"`
}

// VocabEntry is one word in the user's vocabulary collection.
type VocabEntry struct {
	ID             string       `json:"id"`
	Word           string       `json:"word"`
	Phonetic       string       `json:"phonetic"`
	Pos            string       `json:"pos"`
	Translation    string       `json:"translation"`
	Definitions    []Definition `json:"definitions"`
	Examples       []Example    `json:"examples"`
	Level          Level        `json:"level"`
	Tags           []string     `json:"tags"`
	Source         Source       `json:"source"`
	AddedAt        time.Time    `json:"addedAt"`
	ReviewCount    int          `json:"reviewCount"`
	LastReviewedAt *time.Time   `json:"lastReviewedAt"`
}

// EntryDraft carries the caller-editable fields for a new vocabulary entry.
type EntryDraft struct {
	Word        string
	Phonetic    string
	Pos         string
	Translation string
	Definitions []Definition
	Examples    []Example
	Tags        []string
}

// ImportCandidate is one parsed line of a bulk import, before confirmation.
type ImportCandidate struct {
	Word      string `json:"word"`
	Meaning   string `json:"meaning"`
	Duplicate bool   `json:"duplicate"`
	Checked   bool   `json:"checked"`
}

// VocabStats summarises the collection by level.
type VocabStats struct {
	Total           int `json:"total"`
	New             int `json:"new"`
	Learning        int `json:"learning"`
	Mastered        int `json:"mastered"`
	MasteredPercent int `json:"masteredPercent"`
}

// WordKey folds a word for case-insensitive uniqueness checks.
func WordKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Normalize ensures defaults & constraints before the entry joins the collection.
func (e *VocabEntry) Normalize(now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Word = strings.TrimSpace(e.Word)
	if e.Translation == "" {
		e.Translation = e.Word
	}
	if e.Level == LevelUnspecified {
		e.Level = LevelNew
	}
	e.Source = NormalizeSource(e.Source)
	if e.AddedAt.IsZero() {
		e.AddedAt = now
	}
	if e.Definitions == nil {
		e.Definitions = []Definition{}
	}
	if e.Examples == nil {
		e.Examples = []Example{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
}

// Clone returns a deep copy so callers can mutate freely.
func (e VocabEntry) Clone() VocabEntry {
	copy := e
	copy.Definitions = append([]Definition(nil), e.Definitions...)
	copy.Examples = append([]Example(nil), e.Examples...)
	copy.Tags = append([]string(nil), e.Tags...)
	if e.LastReviewedAt != nil {
		t := *e.LastReviewedAt
		copy.LastReviewedAt = &t
	}
	return copy
}
