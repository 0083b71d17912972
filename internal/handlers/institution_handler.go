package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/services"
)

// InstitutionHandler handles institution-related requests.
type InstitutionHandler struct {
	institutionService services.InstitutionServicer
}

// NewInstitutionHandler creates a new InstitutionHandler.
func NewInstitutionHandler(institutionService services.InstitutionServicer) *InstitutionHandler {
	return &InstitutionHandler{institutionService: institutionService}
}

// CreateInstitutionRequest represents the request payload for creating an institution.
type CreateInstitutionRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Kind string `json:"kind" binding:"omitempty,institution_kind"`
}

// UpdateInstitutionRequest represents the request payload for updating an institution.
type UpdateInstitutionRequest struct {
	Name string  `json:"name" binding:"omitempty,min=1,max=100"`
	Kind *string `json:"kind" binding:"omitempty,institution_kind"`
}

// CreateInstitution handles the creation of a new institution
func (h *InstitutionHandler) CreateInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	institution, err := h.institutionService.CreateInstitution(userID, req.Name, models.InstitutionKind(req.Kind))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, institution)
}

// GetInstitutions lists the authenticated user's institutions
func (h *InstitutionHandler) GetInstitutions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	response, err := h.institutionService.GetUserInstitutions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetInstitution returns a single institution
func (h *InstitutionHandler) GetInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	institutionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	institution, err := h.institutionService.GetInstitutionByID(userID, institutionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, institution)
}

// UpdateInstitution updates an institution
func (h *InstitutionHandler) UpdateInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	institutionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var kind *models.InstitutionKind
	if req.Kind != nil {
		k := models.InstitutionKind(*req.Kind)
		kind = &k
	}

	institution, err := h.institutionService.UpdateInstitution(userID, institutionID, req.Name, kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, institution)
}

// DeleteInstitution removes an institution
func (h *InstitutionHandler) DeleteInstitution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	institutionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.institutionService.DeleteInstitution(userID, institutionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Institution deleted"})
}
