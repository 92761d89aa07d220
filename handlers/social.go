package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) Follow(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := a.Graph.Follow(ctx, viewerID(c), c.Param("username")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "following"})
}

func (a *API) Unfollow(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := a.Graph.Unfollow(ctx, viewerID(c), c.Param("username")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}
