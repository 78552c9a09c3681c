package engage

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/phishnews/newshub/app/database"
)

// ErrMissingArticleID is returned when a reaction arrives without an article URL.
var ErrMissingArticleID = errors.New("article id is required")

// Reaction describes what a like or dislike call ended up doing.
type Reaction string

const (
	// ReactionAdded means the reaction was newly recorded.
	ReactionAdded Reaction = "added"
	// ReactionUnchanged means the reaction already existed; nothing moved.
	ReactionUnchanged Reaction = "unchanged"
	// ReactionSwitched means the opposite reaction was replaced by this one.
	ReactionSwitched Reaction = "switched"
)

// Engine applies user reactions to articles. Likes and dislikes are mutually
// exclusive per user: the stored state is read first and the counter deltas
// derived from it, so repeated calls never double-count.
type Engine struct {
	articles database.ArticleRepository
	users    database.UserRepository
}

func NewEngine(articles database.ArticleRepository, users database.UserRepository) *Engine {
	return &Engine{articles: articles, users: users}
}

// Like records the user's like on the article identified by its URL.
func (e *Engine) Like(email, articleID string) (Reaction, error) {
	return e.react(email, articleID, database.SetLiked, database.SetDisliked)
}

// Dislike records the user's dislike on the article identified by its URL.
func (e *Engine) Dislike(email, articleID string) (Reaction, error) {
	return e.react(email, articleID, database.SetDisliked, database.SetLiked)
}

func (e *Engine) react(email, articleID string, target, opposite database.SetKind) (Reaction, error) {
	if articleID == "" {
		return "", ErrMissingArticleID
	}

	liked, disliked, err := e.users.EngagementState(email, articleID)
	if err != nil {
		return "", fmt.Errorf("failed to read engagement state: %w", err)
	}

	has := map[database.SetKind]bool{
		database.SetLiked:    liked,
		database.SetDisliked: disliked,
	}

	// Repeating the current reaction is an idempotent no-op: liking twice
	// must not move like_count a second time.
	if has[target] {
		return ReactionUnchanged, nil
	}

	var reaction Reaction
	var deltas database.CounterDeltas

	switch {
	case has[opposite]:
		if err := e.users.UpdateSet(email, opposite, articleID, database.SetRemove); err != nil {
			return "", fmt.Errorf("failed to remove opposite reaction: %w", err)
		}
		if err := e.users.UpdateSet(email, target, articleID, database.SetAdd); err != nil {
			return "", fmt.Errorf("failed to record reaction: %w", err)
		}
		*counterFor(&deltas, target) = 1
		*counterFor(&deltas, opposite) = -1
		reaction = ReactionSwitched
	default:
		if err := e.users.UpdateSet(email, target, articleID, database.SetAdd); err != nil {
			return "", fmt.Errorf("failed to record reaction: %w", err)
		}
		*counterFor(&deltas, target) = 1
		reaction = ReactionAdded
	}

	if err := e.articles.IncrementCounters(articleID, deltas); err != nil {
		return "", fmt.Errorf("failed to update article counters: %w", err)
	}

	slog.Debug("Recorded reaction", "email", email, "article", articleID, "kind", target, "reaction", reaction)

	return reaction, nil
}

func counterFor(deltas *database.CounterDeltas, kind database.SetKind) *int {
	if kind == database.SetLiked {
		return &deltas.Like
	}
	return &deltas.Dislike
}

// ShareLinks holds ready-made deep links for the supported share targets.
type ShareLinks struct {
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	LinkedIn string `json:"linkedin"`
	WhatsApp string `json:"whatsapp"`
	Telegram string `json:"telegram"`
	Email    string `json:"email"`
}

// Share counts a share of the article and returns deep links the client can
// open directly. Shares are not exclusive and never toggle.
func (e *Engine) Share(articleID, title string) (*ShareLinks, error) {
	if articleID == "" {
		return nil, ErrMissingArticleID
	}

	if err := e.articles.IncrementCounters(articleID, database.CounterDeltas{Share: 1}); err != nil {
		return nil, fmt.Errorf("failed to update share counter: %w", err)
	}

	return BuildShareLinks(articleID, title), nil
}

// BuildShareLinks assembles platform deep links for articleURL with title as
// the accompanying text. Both values are query-escaped.
func BuildShareLinks(articleURL, title string) *ShareLinks {
	u := url.QueryEscape(articleURL)
	t := url.QueryEscape(title)

	return &ShareLinks{
		Twitter:  fmt.Sprintf("https://twitter.com/intent/tweet?url=%s&text=%s", u, t),
		Facebook: fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s", u),
		LinkedIn: fmt.Sprintf("https://www.linkedin.com/sharing/share-offsite/?url=%s", u),
		WhatsApp: fmt.Sprintf("https://wa.me/?text=%s%%20%s", t, u),
		Telegram: fmt.Sprintf("https://t.me/share/url?url=%s&text=%s", u, t),
		Email:    fmt.Sprintf("mailto:?subject=%s&body=%s", t, u),
	}
}
