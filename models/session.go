package models

import "time"

type Season string

const (
	SeasonSpring       Season = "spring"
	SeasonHanji        Season = "hanji"
	SeasonProfessional Season = "professional"
)

// SearchScope names a board whose last search is remembered between visits.
type SearchScope string

const (
	ScopeProBoard SearchScope = "proBoardSearch"
	ScopeProGroup SearchScope = "proGroupSearch"
)

type SearchState struct {
	Keyword    string     `json:"keyword"`
	SearchType string     `json:"searchType"`
	Filter     PostFilter `json:"filter"`
	Page       int        `json:"page"`
}

type AuthState struct {
	Token         string    `json:"-"`
	UserID        int64     `json:"userId,string"`
	Nickname      string    `json:"nickname,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt,omitempty"`
	Authenticated bool      `json:"isAuthenticated"`
}

type SessionDTO struct {
	SessionID string    `json:"sessionId"`
	Season    Season    `json:"season"`
	Auth      AuthState `json:"auth"`
	Bookmarks []int64   `json:"bookmarkedIds"`
}

// StoreState is a snapshot of the post listing state a page renders from.
type StoreState struct {
	Posts      []*PostSummary `json:"posts"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	Loading    bool           `json:"loading"`
	Error      string         `json:"postError,omitempty"`
	SearchMode bool           `json:"searchMode"`
	Keyword    string         `json:"keyword,omitempty"`
	SearchType string         `json:"searchType,omitempty"`
	Filter     PostFilter     `json:"filter"`
	Offline    bool           `json:"offline,omitempty"`
}
