// Package handlers is the thin boundary adapter: it binds requests, calls
// the service interfaces and maps error kinds onto HTTP statuses. No domain
// rule lives here.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chirp/apperr"
	"chirp/auth"
	"chirp/content"
	"chirp/engagement"
	"chirp/feed"
	"chirp/media"
	"chirp/middleware"
	"chirp/search"
	"chirp/social"
	"chirp/store"
)

const requestTimeout = 10 * time.Second

type API struct {
	Accounts   *auth.Accounts
	Content    *content.Service
	Engagement *engagement.Service
	Graph      *social.Graph
	Feed       *feed.Assembler
	Search     *search.Index
	Media      media.Store
	Store      store.Store
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func viewerID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if kind, ok := apperr.KindOf(err); ok {
		switch kind {
		case apperr.Unauthenticated:
			status = http.StatusUnauthorized
		case apperr.Forbidden:
			status = http.StatusForbidden
		case apperr.NotFound:
			status = http.StatusNotFound
		case apperr.Validation:
			status = http.StatusBadRequest
		case apperr.Conflict:
			status = http.StatusConflict
		case apperr.Transient:
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}
