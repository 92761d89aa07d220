package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) LikePost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := a.Engagement.Like(ctx, viewerID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (a *API) UnlikePost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := a.Engagement.Unlike(ctx, viewerID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
