package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SearchAll returns one heterogeneous list, users first, each entry tagged
// with its kind.
func (a *API) SearchAll(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, posts, err := a.Search.All(ctx, c.Query("q"))
	if err != nil {
		respondErr(c, err)
		return
	}

	results := make([]gin.H, 0, len(users)+len(posts))
	for i := range users {
		results = append(results, gin.H{"type": "User", "user": users[i]})
	}
	for i := range posts {
		results = append(results, gin.H{"type": "Post", "post": posts[i]})
	}
	c.JSON(http.StatusOK, results)
}

func (a *API) SearchUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := a.Search.Users(ctx, c.Query("q"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
