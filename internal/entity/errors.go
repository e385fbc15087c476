package entity

import "errors"

// Domain errors for the vocabulary collection and related flows.
var (
	ErrEntryNotFound    = errors.New("vocab entry not found")
	ErrDuplicateEntry   = errors.New("vocab entry already exists")
	ErrInvalidEntryWord = errors.New("invalid vocab entry word")
	ErrEntryNotNew      = errors.New("vocab entry is not in new state")
	ErrSessionNotFound  = errors.New("review session not found")
	ErrSessionFinished  = errors.New("review session already finished")
	ErrEmptyLookupQuery = errors.New("empty lookup query")
)
