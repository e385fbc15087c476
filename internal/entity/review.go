package entity

import "time"

// ReviewSession is a fixed snapshot of the due queue taken when review starts.
// The queue does not change while the session runs, even if the collection does.
type ReviewSession struct {
	ID        string       `json:"id"`
	Queue     []VocabEntry `json:"queue"`
	Cursor    int          `json:"cursor"`
	StartedAt time.Time    `json:"startedAt"`
}

// Current returns the entry under the cursor, or nil when the session is done.
func (s *ReviewSession) Current() *VocabEntry {
	if s.Cursor < 0 || s.Cursor >= len(s.Queue) {
		return nil
	}
	e := s.Queue[s.Cursor].Clone()
	return &e
}

// Finished reports whether every queued entry has an outcome.
func (s *ReviewSession) Finished() bool {
	return s.Cursor >= len(s.Queue)
}

// ReviewOutcome describes the result of grading one flashcard.
type ReviewOutcome struct {
	Entry     *VocabEntry `json:"entry"`
	Remaining int         `json:"remaining"`
	Completed bool        `json:"completed"`
}

// ForecastBucket groups learning entries by when they come due next.
type ForecastBucket struct {
	Label   string       `json:"label"`
	Entries []VocabEntry `json:"entries"`
}
