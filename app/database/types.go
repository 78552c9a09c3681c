package database

import (
	"time"
)

// Article is a stored news item. URL is the dedup key: no two rows share one.
type Article struct {
	ID           int64
	URL          string
	Title        string
	Description  string
	Summary      *string // machine-generated, absent when summarization failed or was skipped
	PublishedAt  *time.Time
	PublishedRaw string // provider-supplied timestamp string, kept for display
	Channel      string
	Source       string
	UserCountry  string
	LikeCount    int
	DislikeCount int
	ShareCount   int
	SavedAt      *time.Time // set once at first full insert; counter-only stubs have none
}

// Engagement is the trending score: likes, dislikes and shares weighted equally.
func (a Article) Engagement() int {
	return a.LikeCount + a.DislikeCount + a.ShareCount
}

type Preferences struct {
	Topics    []string `json:"topics"`
	Sources   []string `json:"sources"`
	Countries []string `json:"countries"`
}

type User struct {
	Email            string
	PasswordHash     string
	Preferences      Preferences
	ReadingHistory   []string
	Bookmarks        []string
	LikedArticles    []string
	DislikedArticles []string
	CreatedAt        time.Time
}

// SetKind names one of the per-user article sets.
type SetKind string

const (
	SetHistory  SetKind = "history"
	SetBookmark SetKind = "bookmark"
	SetLiked    SetKind = "liked"
	SetDisliked SetKind = "disliked"
)

type SetOp string

const (
	SetAdd    SetOp = "add"
	SetRemove SetOp = "remove"
)

// CounterDeltas is applied atomically in a single statement; counters never go below zero.
type CounterDeltas struct {
	Like    int
	Dislike int
	Share   int
}

type SearchQuery struct {
	Keywords  string
	StartDate *time.Time
	EndDate   *time.Time
	Channel   string
	Limit     int
}
