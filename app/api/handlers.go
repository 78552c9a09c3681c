package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phishnews/newshub/app/auth"
	"github.com/phishnews/newshub/app/database"
	"github.com/phishnews/newshub/app/engage"
	"github.com/phishnews/newshub/app/geo"
	"github.com/phishnews/newshub/app/news"
	"github.com/phishnews/newshub/app/sources"
)

func NewHandler(db *database.DB, articles database.ArticleRepository, users database.UserRepository,
	service *news.Service, engine *engage.Engine, authenticator *auth.Authenticator,
	geoClient *geo.Client, version string) *Handler {
	return &Handler{
		db:            db,
		articles:      articles,
		users:         users,
		service:       service,
		engine:        engine,
		authenticator: authenticator,
		geo:           geoClient,
		version:       version,
	}
}

func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "NewsHub",
		"version":     h.version,
		"description": "News aggregation service with engagement tracking, trending and search",
		"endpoints": map[string]string{
			"news":         "/news?source=api|gnews|rss|all",
			"save":         "/news/save (POST)",
			"trending":     "/news/trending",
			"search":       "/news/search?keywords=<q>",
			"personalized": "/news/personalized (requires bearer token)",
			"rss":          "/rss/fetch (POST)",
			"location":     "/location",
			"register":     "/auth/register (POST)",
			"login":        "/auth/login (POST)",
			"user":         "/user/* (requires bearer token)",
			"health":       "/health",
		},
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		slog.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
		return
	}

	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if count, err := h.articles.GetArticleCount(); err == nil {
		health["articles"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.users.GetUserByEmail(email)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	if err := h.users.CreateUser(email, hash, req.Preferences); err != nil {
		slog.Error("Failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetUserByEmail(email)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.authenticator.CreateAccessToken(email)
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) fetchOptions(c *gin.Context) sources.FetchOptions {
	country := c.Query("country")
	if country == "" {
		country = h.geo.CountryOrFallback(c.Request.Context(), h.clientIP(c))
	}

	return sources.FetchOptions{
		Selector: c.DefaultQuery("source", sources.SelectorAPI),
		Country:  country,
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
}

func (h *Handler) clientIP(c *gin.Context) string {
	return geo.ClientIP(c.Request.RemoteAddr, c.GetHeader("X-Forwarded-For"))
}

func (h *Handler) GetNews(c *gin.Context) {
	articles := h.service.Fetch(c.Request.Context(), h.fetchOptions(c))

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

func (h *Handler) SaveNews(c *gin.Context) {
	saved, err := h.service.SaveHeadlines(c.Request.Context(), h.fetchOptions(c))
	if err != nil {
		slog.Error("Failed to save headlines", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save headlines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (h *Handler) GetTrending(c *gin.Context) {
	articles, err := h.service.Trending()
	if err != nil {
		slog.Error("Failed to load trending", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trending articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toArticleResponses(articles),
		"count":    len(articles),
	})
}

func (h *Handler) SearchNews(c *gin.Context) {
	query := database.SearchQuery{
		Keywords: c.Query("keywords"),
		Channel:  c.Query("channel"),
	}

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		query.StartDate = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		// Inclusive: cover the whole end day
		end := parsed.AddDate(0, 0, 1).Add(-time.Second)
		query.EndDate = &end
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		query.Limit = limit
	}

	articles, err := h.service.Search(query)
	if err != nil {
		slog.Error("Search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toArticleResponses(articles),
		"count":    len(articles),
	})
}

func (h *Handler) GetPersonalized(c *gin.Context) {
	matched, err := h.service.Personalized(currentEmail(c))
	if err != nil {
		slog.Error("Personalized feed failed", "email", currentEmail(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build personalized feed"})
		return
	}

	out := make([]gin.H, 0, len(matched))
	for _, article := range matched {
		entry := articleFields(article.Article)
		entry["status"] = article.Status
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": out,
		"count":    len(out),
	})
}

func (h *Handler) FetchFeeds(c *gin.Context) {
	country := h.geo.CountryOrFallback(c.Request.Context(), h.clientIP(c))

	saved, err := h.service.RefreshFeeds(c.Request.Context(), country)
	if err != nil {
		slog.Error("Feed refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Feed refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved, "country": country})
}

func (h *Handler) GetLocation(c *gin.Context) {
	loc := h.geo.Lookup(c.Request.Context(), h.clientIP(c))
	if loc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Location service unavailable"})
		return
	}

	c.JSON(http.StatusOK, loc)
}

func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.users.GetUserByEmail(currentEmail(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":       user.Email,
		"preferences": user.Preferences,
		"counts": gin.H{
			"history":   len(user.ReadingHistory),
			"bookmarks": len(user.Bookmarks),
			"liked":     len(user.LikedArticles),
			"disliked":  len(user.DislikedArticles),
		},
		"created_at": user.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	var prefs database.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preferences payload"})
		return
	}

	if err := h.users.UpdatePreferences(currentEmail(c), prefs); err != nil {
		slog.Error("Failed to update preferences", "email", currentEmail(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Preferences updated", "preferences": prefs})
}

func (h *Handler) AddHistory(c *gin.Context) {
	h.updateSet(c, database.SetHistory, database.SetAdd, "Added to reading history")
}

func (h *Handler) Bookmark(c *gin.Context) {
	h.updateSet(c, database.SetBookmark, database.SetAdd, "Article bookmarked")
}

func (h *Handler) Unbookmark(c *gin.Context) {
	h.updateSet(c, database.SetBookmark, database.SetRemove, "Bookmark removed")
}

func (h *Handler) updateSet(c *gin.Context, kind database.SetKind, op database.SetOp, message string) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id is required"})
		return
	}

	if err := h.users.UpdateSet(currentEmail(c), kind, req.ArticleID, op); err != nil {
		slog.Error("Failed to update set", "kind", kind, "email", currentEmail(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *Handler) GetRecentlyViewed(c *gin.Context) {
	h.setArticles(c, h.service.RecentlyViewed)
}

func (h *Handler) GetBookmarks(c *gin.Context) {
	h.setArticles(c, h.service.Bookmarks)
}

func (h *Handler) setArticles(c *gin.Context, load func(string) ([]database.Article, error)) {
	articles, err := load(currentEmail(c))
	if err != nil {
		slog.Error("Failed to load user articles", "email", currentEmail(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toArticleResponses(articles),
		"count":    len(articles),
	})
}

func (h *Handler) Like(c *gin.Context) {
	h.react(c, h.engine.Like, "like")
}

func (h *Handler) Dislike(c *gin.Context) {
	h.react(c, h.engine.Dislike, "dislike")
}

func (h *Handler) react(c *gin.Context, apply func(string, string) (engage.Reaction, error), kind string) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id is required"})
		return
	}

	reaction, err := apply(currentEmail(c), req.ArticleID)
	if errors.Is(err, engage.ErrMissingArticleID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id is required"})
		return
	}
	if err != nil {
		slog.Error("Reaction failed", "kind", kind, "email", currentEmail(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reaction failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reaction": string(reaction)})
}

func (h *Handler) Share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id is required"})
		return
	}

	links, err := h.engine.Share(req.ArticleID, req.Title)
	if errors.Is(err, engage.ErrMissingArticleID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id is required"})
		return
	}
	if err != nil {
		slog.Error("Share failed", "email", currentEmail(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Share failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Share recorded", "links": links})
}

func (h *Handler) DebugGetUser(c *gin.Context) {
	user, err := h.users.GetUserByEmail(c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":       user.Email,
		"preferences": user.Preferences,
		"history":     user.ReadingHistory,
		"bookmarks":   user.Bookmarks,
		"liked":       user.LikedArticles,
		"disliked":    user.DislikedArticles,
		"created_at":  user.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) DebugDeleteUser(c *gin.Context) {
	deleted, err := h.users.DeleteUser(c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func articleFields(a database.Article) gin.H {
	fields := gin.H{
		"url":           a.URL,
		"title":         a.Title,
		"description":   a.Description,
		"summary":       a.Summary,
		"published_raw": a.PublishedRaw,
		"channel":       a.Channel,
		"source":        a.Source,
		"user_country":  a.UserCountry,
		"like_count":    a.LikeCount,
		"dislike_count": a.DislikeCount,
		"share_count":   a.ShareCount,
		"engagement":    a.Engagement(),
	}
	if a.PublishedAt != nil {
		fields["published_at"] = a.PublishedAt.Format(time.RFC3339)
	}
	if a.SavedAt != nil {
		fields["saved_at"] = a.SavedAt.Format(time.RFC3339)
	}
	return fields
}

func toArticleResponses(articles []database.Article) []gin.H {
	out := make([]gin.H, 0, len(articles))
	for _, article := range articles {
		out = append(out, articleFields(article))
	}
	return out
}
