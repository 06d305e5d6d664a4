package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/pkg/models"
)

// respondError renders any error through the single {res, message} +
// status mapping. A plain error (not *apierr.Error) is treated as
// internal and never echoes its own text back to the client.
func respondError(c *gin.Context, err error) {
	var aerr *apierr.Error
	if errors.As(err, &aerr) {
		c.JSON(aerr.Status(), models.ErrorResponse(aerr.Error()))
		return
	}
	c.JSON(500, models.ErrorResponse(apierr.New(apierr.Internal).Error()))
}

// bindError turns a ShouldBindJSON failure into the right *apierr.Error: a
// body that tripped bodyLimit's http.MaxBytesReader is BodyTooLarge
// regardless of which endpoint it hit, otherwise fallback is the
// endpoint's ordinary malformed-payload code.
func bindError(err error, fallback apierr.Code) *apierr.Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.New(apierr.BodyTooLarge)
	}
	return apierr.New(fallback)
}
