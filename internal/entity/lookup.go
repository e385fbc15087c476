package entity

// LookupResult is the structured outcome of a dictionary translation.
//
// IsWord distinguishes single words/phrases from full sentences; only
// English words are eligible for automatic collection.
type LookupResult struct {
	Word        string       `json:"word"`
	IsEnglish   bool         `json:"isEnglish"`
	IsWord      bool         `json:"isWord"`
	Translation string       `json:"translation"`
	Phonetic    string       `json:"phonetic"`
	Pos         string       `json:"pos"`
	Definitions []Definition `json:"definitions"`
	Examples    []Example    `json:"examples"`
}
