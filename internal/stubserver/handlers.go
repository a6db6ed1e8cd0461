package stubserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iba200/otaku-wireframe/internal/domain"
	"github.com/iba200/otaku-wireframe/internal/validator"
)

// bindJSON decodes the request body into dst, answering 400 on malformed
// payloads.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// respondValidation turns a validation error into a 422 with one line per
// failed field.
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": strings.Join(validator.Messages(err), "; ")})
}

// contentQuery reads the shared listing parameters from the query string.
func contentQuery(c *gin.Context) ContentQuery {
	return ContentQuery{
		Page:     queryInt(c, "page"),
		PerPage:  queryInt(c, "per_page"),
		Sort:     c.Query("sort"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// publicUsers strips emails from a user list before it leaves the API.
func publicUsers(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	for i, u := range users {
		u.Email = ""
		out[i] = u
	}
	return out
}
