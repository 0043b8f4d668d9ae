package api

import (
	"errors"
	"io"
	"net/http"

	"sunotrack/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxImportSize caps an import document at 32 MB.
const maxImportSize = 32 << 20

// ExportState serves the whole store as a downloadable snapshot document.
func (h *HTTPHandler) ExportState(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="sunotrack-export.json"`)
	c.JSON(http.StatusOK, h.store.ExportSnapshot())
}

// ImportState replaces the whole store with the posted snapshot. Validation
// is all-or-nothing: a malformed document is rejected without touching any
// state.
func (h *HTTPHandler) ImportState(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		InvalidPayload(c)
		return
	}

	snapshot, err := entity.ParseSnapshot(raw)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidSnapshot) {
			BadRequest(c, ErrCodeInvalidSnapshot, err.Error())
			return
		}
		InvalidPayload(c)
		return
	}

	if err := h.store.ImportSnapshot(c.Request.Context(), snapshot); err != nil {
		logrus.WithError(err).Error("failed to import snapshot")
		InternalError(c, "failed to import snapshot")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "imported",
		"tasks":  len(snapshot.Tasks),
	})
}
