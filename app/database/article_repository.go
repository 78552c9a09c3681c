package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var _ ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo handles database operations for articles
type ArticleRepo struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

const articleColumns = `id, url, title, description, summary, published_at,
	published_raw, channel, source, user_country,
	like_count, dislike_count, share_count, saved_at`

// UpsertArticle inserts the article unless its URL is already stored.
// Existing rows are never overwritten by a re-fetch, even when provider
// content has changed. The UNIQUE constraint on url makes a concurrent
// double-insert collapse into the benign "already exists" outcome.
func (r *ArticleRepo) UpsertArticle(article Article) (bool, error) {
	if article.URL == "" {
		return false, fmt.Errorf("article has no URL")
	}

	title := article.Title
	if title == "" {
		title = "No Title"
	}

	savedAt := time.Now().UTC()

	res, err := r.db.Exec(`
		INSERT INTO articles (url, title, description, summary, published_at,
			published_raw, channel, source, user_country, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, article.URL, title, article.Description, article.Summary, article.PublishedAt,
		article.PublishedRaw, article.Channel, article.Source,
		strings.ToUpper(article.UserCountry), savedAt)
	if err != nil {
		return false, fmt.Errorf("failed to upsert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read upsert result: %w", err)
	}

	return affected > 0, nil
}

func (r *ArticleRepo) GetArticleByURL(url string) (*Article, error) {
	row := r.db.QueryRow(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE url = ?
	`, url)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// GetArticlesByURLs returns stored articles for the given URLs, in the order
// the URLs were passed. Unknown URLs are silently skipped.
func (r *ArticleRepo) GetArticlesByURLs(urls []string) ([]Article, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(urls))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(urls))
	for i, u := range urls {
		args[i] = u
	}

	rows, err := r.db.Query(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE url IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles by URLs: %w", err)
	}
	defer rows.Close()

	byURL := make(map[string]Article)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		byURL[article.URL] = *article
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	articles := make([]Article, 0, len(byURL))
	for _, u := range urls {
		if a, ok := byURL[u]; ok {
			articles = append(articles, a)
		}
	}

	return articles, nil
}

func (r *ArticleRepo) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// IncrementCounters applies the deltas in one atomic statement. When the
// article is not yet stored a counter-only stub row is created, so engagement
// can be recorded before the article body is persisted. Counters are floored
// at zero.
func (r *ArticleRepo) IncrementCounters(url string, deltas CounterDeltas) error {
	if url == "" {
		return fmt.Errorf("article URL is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO articles (url, like_count, dislike_count, share_count)
		VALUES (?, MAX(?, 0), MAX(?, 0), MAX(?, 0))
		ON CONFLICT(url) DO UPDATE SET
			like_count = MAX(like_count + ?, 0),
			dislike_count = MAX(dislike_count + ?, 0),
			share_count = MAX(share_count + ?, 0)
	`, url, deltas.Like, deltas.Dislike, deltas.Share,
		deltas.Like, deltas.Dislike, deltas.Share)
	if err != nil {
		return fmt.Errorf("failed to increment counters: %w", err)
	}

	return nil
}

// GetTrending returns the most engaged articles, most recent first on ties.
// The time window applies only when at least one stored article has a
// saved_at timestamp; on a cold start the whole corpus is considered.
func (r *ArticleRepo) GetTrending(window time.Duration, limit int) ([]Article, error) {
	var hasSavedAt bool
	err := r.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM articles WHERE saved_at IS NOT NULL)",
	).Scan(&hasSavedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to check for saved articles: %w", err)
	}

	query := `
		SELECT ` + articleColumns + `
		FROM articles`
	var args []interface{}

	if hasSavedAt {
		query += ` WHERE saved_at >= ?`
		args = append(args, time.Now().UTC().Add(-window))
	}

	query += `
		ORDER BY (like_count + dislike_count + share_count) DESC, saved_at DESC
		LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// Search filters the stored corpus. A keyword query uses the FTS5 index and
// orders by bm25 relevance; without keywords results are ordered by
// published_at descending.
func (r *ArticleRepo) Search(query SearchQuery) ([]Article, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	var sb strings.Builder
	var args []interface{}

	if query.Keywords != "" {
		sb.WriteString(`
			SELECT ` + prefixColumns("a", articleColumns) + `
			FROM articles a
			JOIN articles_fts ON articles_fts.rowid = a.id
			WHERE articles_fts MATCH ?`)
		args = append(args, ftsQuery(query.Keywords))
	} else {
		sb.WriteString(`
			SELECT ` + prefixColumns("a", articleColumns) + `
			FROM articles a
			WHERE 1 = 1`)
	}

	if query.StartDate != nil {
		sb.WriteString(` AND a.published_at >= ?`)
		args = append(args, *query.StartDate)
	}
	if query.EndDate != nil {
		sb.WriteString(` AND a.published_at <= ?`)
		args = append(args, *query.EndDate)
	}
	if query.Channel != "" {
		sb.WriteString(` AND a.channel = ?`)
		args = append(args, query.Channel)
	}

	if query.Keywords != "" {
		sb.WriteString(` ORDER BY bm25(articles_fts)`)
	} else {
		sb.WriteString(` ORDER BY a.published_at DESC`)
	}

	sb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ftsQuery quotes each token so user input cannot break FTS5 query syntax.
func ftsQuery(keywords string) string {
	fields := strings.Fields(keywords)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var summary sql.NullString
	var publishedAt, savedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.URL, &a.Title, &a.Description, &summary, &publishedAt,
		&a.PublishedRaw, &a.Channel, &a.Source, &a.UserCountry,
		&a.LikeCount, &a.DislikeCount, &a.ShareCount, &savedAt,
	)
	if err != nil {
		return nil, err
	}

	if summary.Valid {
		a.Summary = &summary.String
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	if savedAt.Valid {
		t := savedAt.Time
		a.SavedAt = &t
	}

	return &a, nil
}

func collectArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}
