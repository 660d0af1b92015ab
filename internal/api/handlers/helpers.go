package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/ballbattle/internal/game"
)

// ownsMatch reports whether the authenticated player token was issued for
// the match in the URL, answering 403 when it was not.
func ownsMatch(c *gin.Context) bool {
	if c.GetString("game_token") != c.Param("token") {
		c.JSON(http.StatusForbidden, gin.H{"error": "token not valid for this match"})
		return false
	}
	return true
}

// sessionError maps manager errors to a JSON response.
func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
	case errors.Is(err, game.ErrTooManySessions):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is full, try again later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
