package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) GetUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := a.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
