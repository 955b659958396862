package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/response"
)

type promotionService interface {
	Promote(ctx context.Context, req dto.PromoteStudentRequest) (*models.ClassRecord, error)
	Options(ctx context.Context, studentID string) (*dto.PromotionOptions, error)
}

// PromotionHandler exposes class promotion endpoints.
type PromotionHandler struct {
	promotions promotionService
}

// NewPromotionHandler constructs PromotionHandler.
func NewPromotionHandler(promotions promotionService) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

// Promote godoc
// @Summary Promote a student
// @Description Appends a class record for a new year; roll numbers are unique per class and year
// @Tags Promotion
// @Accept json
// @Produce json
// @Param payload body dto.PromoteStudentRequest true "Promotion payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/students/promote [post]
func (h *PromotionHandler) Promote(c *gin.Context) {
	var req dto.PromoteStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.promotions.Promote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Options godoc
// @Summary Promotion options for a student
// @Tags Promotion
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id}/promotion [get]
func (h *PromotionHandler) Options(c *gin.Context) {
	opts, err := h.promotions.Options(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opts, nil)
}
