package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreativeHistory returns the creative prompt recall list, most recent first.
// Reading history never reorders it.
func (h *HTTPHandler) CreativeHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.store.CreativeHistory()})
}

// CustomHistory returns the custom-mode recall list, most recent first.
func (h *HTTPHandler) CustomHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.store.CustomHistory()})
}
