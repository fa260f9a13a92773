package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitelink/claimworks/internal/apperror"
)

// ErrorBody is the stable error envelope returned on every failure
type ErrorBody struct {
	Kind    apperror.Kind     `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// errorResponse wraps the envelope under the "error" key
type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// respondError maps an application error onto its HTTP status and envelope
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	c.AbortWithStatusJSON(apperror.HTTPStatus(kind), errorResponse{
		Error: ErrorBody{
			Kind:    kind,
			Message: apperror.MessageOf(err),
			Fields:  apperror.FieldsOf(err),
		},
	})
}

// respondValidation reports a malformed request body
func respondValidation(c *gin.Context, err error) {
	respondError(c, apperror.Validation("invalid request payload: "+err.Error()))
}

func respondOK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

func respondCreated(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}
