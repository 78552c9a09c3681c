package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

var _ UserRepository = (*UserRepo)(nil)

// UserRepo handles database operations for user accounts
type UserRepo struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(email, passwordHash string, prefs Preferences) error {
	prefsJSON, err := marshalPreferences(prefs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO users (email, password_hash, preferences)
		VALUES (?, ?, ?)
	`, email, passwordHash, prefsJSON)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail loads the user row plus all four article sets.
// Returns nil without error when no such user exists.
func (r *UserRepo) GetUserByEmail(email string) (*User, error) {
	var u User
	var prefsJSON string

	err := r.db.QueryRow(`
		SELECT email, password_hash, preferences, created_at
		FROM users
		WHERE email = ?
	`, email).Scan(&u.Email, &u.PasswordHash, &prefsJSON, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if prefsJSON != "" {
		if err := json.Unmarshal([]byte(prefsJSON), &u.Preferences); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
	}

	sets := map[SetKind]*[]string{
		SetHistory:  &u.ReadingHistory,
		SetBookmark: &u.Bookmarks,
		SetLiked:    &u.LikedArticles,
		SetDisliked: &u.DislikedArticles,
	}
	for kind, dest := range sets {
		ids, err := r.GetSet(email, kind)
		if err != nil {
			return nil, err
		}
		*dest = ids
	}

	return &u, nil
}

func (r *UserRepo) DeleteUser(email string) (int64, error) {
	res, err := r.db.Exec("DELETE FROM users WHERE email = ?", email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return deleted, nil
}

func (r *UserRepo) UpdatePreferences(email string, prefs Preferences) error {
	prefsJSON, err := marshalPreferences(prefs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		UPDATE users SET preferences = ? WHERE email = ?
	`, prefsJSON, email)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	return nil
}

// UpdateSet adds or removes one article from a user set. Both directions are
// idempotent: re-adding a member and removing a non-member are no-ops.
func (r *UserRepo) UpdateSet(email string, kind SetKind, articleID string, op SetOp) error {
	var err error

	switch op {
	case SetAdd:
		_, err = r.db.Exec(`
			INSERT OR IGNORE INTO user_articles (email, kind, article_id)
			VALUES (?, ?, ?)
		`, email, string(kind), articleID)
	case SetRemove:
		_, err = r.db.Exec(`
			DELETE FROM user_articles
			WHERE email = ? AND kind = ? AND article_id = ?
		`, email, string(kind), articleID)
	default:
		return fmt.Errorf("unknown set operation: %s", op)
	}

	if err != nil {
		return fmt.Errorf("failed to %s %s set entry: %w", op, kind, err)
	}

	return nil
}

// GetSet returns the article identifiers of one user set in insertion order.
func (r *UserRepo) GetSet(email string, kind SetKind) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT article_id
		FROM user_articles
		WHERE email = ? AND kind = ?
		ORDER BY added_at, rowid
	`, email, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s set: %w", kind, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan set row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating set rows: %w", err)
	}

	return ids, nil
}

// EngagementState reports whether the user currently has the article in the
// liked or disliked set. The engagement engine reads this before deciding
// counter deltas.
func (r *UserRepo) EngagementState(email, articleID string) (bool, bool, error) {
	rows, err := r.db.Query(`
		SELECT kind
		FROM user_articles
		WHERE email = ? AND article_id = ? AND kind IN (?, ?)
	`, email, articleID, string(SetLiked), string(SetDisliked))
	if err != nil {
		return false, false, fmt.Errorf("failed to get engagement state: %w", err)
	}
	defer rows.Close()

	var liked, disliked bool
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return false, false, fmt.Errorf("failed to scan engagement row: %w", err)
		}
		switch SetKind(kind) {
		case SetLiked:
			liked = true
		case SetDisliked:
			disliked = true
		}
	}

	if err := rows.Err(); err != nil {
		return false, false, fmt.Errorf("error iterating engagement rows: %w", err)
	}

	return liked, disliked, nil
}

func marshalPreferences(prefs Preferences) (string, error) {
	if prefs.Topics == nil {
		prefs.Topics = []string{}
	}
	if prefs.Sources == nil {
		prefs.Sources = []string{}
	}
	if prefs.Countries == nil {
		prefs.Countries = []string{}
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("failed to encode preferences: %w", err)
	}

	return string(data), nil
}
