package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// settingsUpdate is a partial settings patch; absent fields keep their
// current value.
type settingsUpdate struct {
	BaseURL      *string `json:"baseUrl"`
	APIKey       *string `json:"apiKey"`
	PollInterval *int    `json:"autoCheckInterval"`
	AutoRename   *bool   `json:"autoRename"`
}

// GetSettings returns the current settings record.
func (h *HTTPHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Settings())
}

// UpdateSettings applies a partial settings patch through the store's
// setters, each of which persists synchronously.
func (h *HTTPHandler) UpdateSettings(c *gin.Context) {
	var update settingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		InvalidPayload(c)
		return
	}

	ctx := c.Request.Context()
	if update.BaseURL != nil {
		if err := h.store.SetBaseURL(ctx, *update.BaseURL); err != nil {
			logrus.WithError(err).Error("failed to save base url")
			InternalError(c, "failed to save settings")
			return
		}
	}
	if update.APIKey != nil {
		if err := h.store.SetAPIKey(ctx, *update.APIKey); err != nil {
			logrus.WithError(err).Error("failed to save api key")
			InternalError(c, "failed to save settings")
			return
		}
	}
	if update.PollInterval != nil {
		if err := h.store.SetPollInterval(ctx, *update.PollInterval); err != nil {
			logrus.WithError(err).Error("failed to save poll interval")
			InternalError(c, "failed to save settings")
			return
		}
	}
	if update.AutoRename != nil {
		if err := h.store.SetAutoRename(ctx, *update.AutoRename); err != nil {
			logrus.WithError(err).Error("failed to save auto-rename flag")
			InternalError(c, "failed to save settings")
			return
		}
	}

	c.JSON(http.StatusOK, h.store.Settings())
}
