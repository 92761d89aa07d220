package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"chirp/models"
)

type postRequest struct {
	Body  string `json:"body"`
	Media string `json:"media,omitempty"`
}

func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := a.Content.CreatePost(ctx, viewerID(c), req.Body, req.Media)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (a *API) EditPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := a.Content.EditPost(ctx, viewerID(c), c.Param("id"), req.Body, req.Media)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (a *API) DeletePost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := a.Content.DeletePost(ctx, viewerID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (a *API) GetPost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := a.Content.Post(ctx, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetPosts serves the feed. Query params: page (1-based), filter, limit.
func (a *API) GetPosts(c *gin.Context) {
	page, err := pageParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter, err := models.ParseFeedFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := a.Feed.Posts(ctx, viewerID(c), filter, page, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPostsByIDs resolves a comma-separated id list; dead keys are omitted.
func (a *API) GetPostsByIDs(c *gin.Context) {
	ids := splitIDs(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusOK, []models.Post{})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := a.Content.PostsByIDs(ctx, ids)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func pageParam(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errInvalidPage
	}
	return page, nil
}

var errInvalidPage = errors.New("page must be a positive integer")

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
