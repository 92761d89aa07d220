package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chirp/models"
)

type commentRequest struct {
	Body     string `json:"body"`
	ParentID string `json:"parentId" binding:"required"`
	Media    string `json:"media,omitempty"`
}

func (a *API) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := a.Content.CreateComment(ctx, viewerID(c), req.ParentID, req.Body, req.Media)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (a *API) EditComment(c *gin.Context) {
	var req struct {
		Body  string `json:"body"`
		Media string `json:"media,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := a.Content.EditComment(ctx, viewerID(c), c.Param("id"), req.Body, req.Media)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (a *API) DeleteComment(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := a.Content.DeleteComment(ctx, viewerID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (a *API) GetComments(c *gin.Context) {
	page, err := pageParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := a.Content.Comments(ctx, c.Param("id"), page)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (a *API) GetCommentsByIDs(c *gin.Context) {
	ids := splitIDs(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusOK, []models.Comment{})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := a.Content.CommentsByIDs(ctx, ids)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
