package api

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madfam-org/ticketbooth/internal/errors"
	"github.com/madfam-org/ticketbooth/internal/logging"
	"github.com/madfam-org/ticketbooth/internal/middleware"
	"github.com/madfam-org/ticketbooth/internal/validation"
)

// CreateToken mints a token.
// POST /api/tokens
func (h *Handler) CreateToken(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			middleware.AbortWithAppError(c, errors.ErrPayloadTooLarge.WithError(err))
			return
		}
		middleware.AbortInternal(c, err)
		return
	}

	input, validationErrs := h.validator.ValidateCreateTokenInput(body)
	if len(validationErrs) > 0 {
		h.logger.Debug(ctx, "Rejected token request", logging.String("errors", validationErrs.Error()))
		middleware.AbortValidation(c, validationErrs.Flatten())
		return
	}

	token, err := h.tokens.CreateToken(ctx, input)
	if err != nil {
		middleware.AbortWithAppError(c, errors.ErrInternal.WithError(errors.WrapDBError(err)))
		return
	}

	h.metrics.RecordTokenIssued()
	c.JSON(http.StatusCreated, token)
}

// ListActiveTokens returns the user's unexpired tokens, newest first.
// GET /api/tokens?userId=
func (h *Handler) ListActiveTokens(c *gin.Context) {
	userID, err := validation.RequireQueryParam(c, "userId")
	if err != nil {
		middleware.AbortMissingParameter(c, err.Error())
		return
	}

	tokens, err := h.tokens.GetActiveTokens(c.Request.Context(), userID)
	h.metrics.RecordTokenQuery(len(tokens), err)
	if err != nil {
		middleware.AbortWithAppError(c, errors.ErrInternal.WithError(errors.WrapDBError(err)))
		return
	}

	c.JSON(http.StatusOK, tokens)
}
