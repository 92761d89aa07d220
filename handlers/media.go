package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const uploadTimeout = 30 * time.Second

// UploadMedia stores a file and returns the reference string to attach to a
// post or comment.
func (a *API) UploadMedia(c *gin.Context) {
	if a.Media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media uploads are not configured"})
		return
	}

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse form data"})
		return
	}
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	name := viewerID(c) + "_" + time.Now().Format("20060102150405")
	ref, err := a.Media.Upload(ctx, file, name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": ref})
}
