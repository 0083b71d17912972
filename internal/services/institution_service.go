package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/pagination"
)

// institutionService handles institution-related business logic.
type institutionService struct {
	db *gorm.DB
}

// NewInstitutionService creates a new InstitutionServicer.
func NewInstitutionService(db *gorm.DB) InstitutionServicer {
	return &institutionService{db: db}
}

// CreateInstitution creates an institution for the user.
func (s *institutionService) CreateInstitution(userID, name string, kind models.InstitutionKind) (*models.Institution, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "institution name is required")
	}
	if kind == "" {
		kind = models.InstitutionKindBank
	}

	institution := &models.Institution{
		UserID: userID,
		Name:   name,
		Kind:   kind,
	}
	if err := s.db.Create(institution).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return institution, nil
}

// GetUserInstitutions returns the user's institutions, paginated.
func (s *institutionService) GetUserInstitutions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Institution], error) {
	page.Defaults()

	var total int64
	query := s.db.Model(&models.Institution{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var institutions []models.Institution
	err := query.Scopes(pagination.Paginate(page)).Order("name").Find(&institutions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(institutions, page.Page, page.PageSize, total)
	return &response, nil
}

// GetInstitutionByID retrieves an institution, scoped to the owning user.
func (s *institutionService) GetInstitutionByID(userID, institutionID string) (*models.Institution, error) {
	var institution models.Institution
	err := s.db.Where("id = ? AND user_id = ?", institutionID, userID).First(&institution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInstitutionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &institution, nil
}

// UpdateInstitution updates an institution's name and kind.
func (s *institutionService) UpdateInstitution(userID, institutionID, name string, kind *models.InstitutionKind) (*models.Institution, error) {
	institution, err := s.GetInstitutionByID(userID, institutionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
		institution.Name = name
	}
	if kind != nil {
		updates["kind"] = *kind
		institution.Kind = *kind
	}
	if len(updates) == 0 {
		return institution, nil
	}

	if err := s.db.Model(institution).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return institution, nil
}

// DeleteInstitution removes an institution. Holdings, balances, and
// transactions keep their institution reference for history; lookups treat
// the dangling reference like the portfolio-level bucket they fall back to.
func (s *institutionService) DeleteInstitution(userID, institutionID string) error {
	institution, err := s.GetInstitutionByID(userID, institutionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(institution).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
