package domain

// ImportStats counts the rows written by an offline index import.
type ImportStats struct {
	Posts int `json:"posts"`
	Files int `json:"files"`
}
