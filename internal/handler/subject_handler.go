package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/workflow"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/response"
)

// SubjectHandler serves the subject catalog.
type SubjectHandler struct{}

// NewSubjectHandler constructs SubjectHandler.
func NewSubjectHandler() *SubjectHandler {
	return &SubjectHandler{}
}

// Catalog godoc
// @Summary Subjects offered to a class
// @Tags Subjects
// @Produce json
// @Param class query string false "Class, defaults to Class_6"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) Catalog(c *gin.Context) {
	class := workflow.DefaultClass
	if raw := c.Query("class"); raw != "" {
		parsed, ok := models.ParseClassName(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid class"))
			return
		}
		class = parsed
	}
	response.JSON(c, http.StatusOK, gin.H{"className": class, "subjects": workflow.Catalog(class)}, nil)
}
