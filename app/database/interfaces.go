package database

import (
	"time"
)

type ArticleRepository interface {
	UpsertArticle(article Article) (bool, error)
	GetArticleByURL(url string) (*Article, error)
	GetArticlesByURLs(urls []string) ([]Article, error)
	GetArticleCount() (int, error)

	IncrementCounters(url string, deltas CounterDeltas) error

	GetTrending(window time.Duration, limit int) ([]Article, error)
	Search(query SearchQuery) ([]Article, error)
}

type UserRepository interface {
	CreateUser(email, passwordHash string, prefs Preferences) error
	GetUserByEmail(email string) (*User, error)
	DeleteUser(email string) (int64, error)

	UpdatePreferences(email string, prefs Preferences) error
	UpdateSet(email string, kind SetKind, articleID string, op SetOp) error
	GetSet(email string, kind SetKind) ([]string, error)
	EngagementState(email, articleID string) (liked, disliked bool, err error)
}
