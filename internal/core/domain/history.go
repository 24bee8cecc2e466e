package domain

import "time"

// RecentSearch is a search term recorded for a team.
type RecentSearch struct {
	ID        string    `json:"id"`
	ServerURL string    `json:"server_url"`
	TeamID    string    `json:"team_id"`
	Term      string    `json:"term"`
	CreatedAt time.Time `json:"created_at"`
}
