package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/middleware"
	"sweetshop/internal/models"
	"sweetshop/internal/service"
)

func (h HandlerSet) UploadSweetImage(c *gin.Context) {
	if h.images == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, envelope{Error: &apiError{
			Message: "image storage is not configured",
			Code:    "storage_disabled",
		}})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageBytes+1<<20)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.fail(c, models.NewValidationError("file", "an image file is required"))
		return
	}
	defer file.Close()

	item, err := h.images.Attach(c.Request.Context(), middleware.AccessToken(c), service.ImageInput{
		ItemID: c.Param("id"),
		File:   file,
		Header: header,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, toSweetResponse(item))
}
