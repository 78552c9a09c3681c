package api

import (
	"github.com/phishnews/newshub/app/auth"
	"github.com/phishnews/newshub/app/database"
	"github.com/phishnews/newshub/app/engage"
	"github.com/phishnews/newshub/app/geo"
	"github.com/phishnews/newshub/app/news"
)

type Handler struct {
	db            *database.DB
	articles      database.ArticleRepository
	users         database.UserRepository
	service       *news.Service
	engine        *engage.Engine
	authenticator *auth.Authenticator
	geo           *geo.Client
	version       string
}

type registerRequest struct {
	Email       string               `json:"email" binding:"required"`
	Password    string               `json:"password" binding:"required"`
	Preferences database.Preferences `json:"preferences"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type articleRequest struct {
	ArticleID string `json:"article_id"`
}

type shareRequest struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
}
