package entity

import "time"

// HistoryRecord is one entry of the translation lookup log.
type HistoryRecord struct {
	Word        string    `json:"word"`
	Translation string    `json:"translation"`
	Time        time.Time `json:"time"`
}
