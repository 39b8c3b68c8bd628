package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/models"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

type academicPeriodRepository interface {
	List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, int, error)
	FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error)
	FindActive(ctx context.Context) (*models.AcademicPeriod, error)
	ExistsByYearAndType(ctx context.Context, academicYear string, periodType models.AcademicPeriodType, excludeID string) (bool, error)
	Create(ctx context.Context, period *models.AcademicPeriod) error
	Update(ctx context.Context, period *models.AcademicPeriod) error
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountSections(ctx context.Context, id string) (int, error)
}

// CreateAcademicPeriodRequest captures fields for opening a new period.
type CreateAcademicPeriodRequest struct {
	Name         string                    `json:"name" validate:"required"`
	Type         models.AcademicPeriodType `json:"type" validate:"required,oneof=SEMESTER TRIMESTER QUARTER"`
	AcademicYear string                    `json:"academic_year" validate:"required"`
	StartDate    string                    `json:"start_date" validate:"required"`
	EndDate      string                    `json:"end_date" validate:"required"`
}

// UpdateAcademicPeriodRequest modifies an existing period's dates and name.
type UpdateAcademicPeriodRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// AcademicPeriodService handles academic period catalog workflows.
type AcademicPeriodService struct {
	repo      academicPeriodRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicPeriodService creates a new academic period service.
func NewAcademicPeriodService(repo academicPeriodRepository, validate *validator.Validate, logger *zap.Logger) *AcademicPeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicPeriodService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated academic periods.
func (s *AcademicPeriodService) List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, *models.Pagination, error) {
	periods, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic periods")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return periods, pagination, nil
}

// Get returns an academic period by identifier.
func (s *AcademicPeriodService) Get(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic period")
	}
	return period, nil
}

// Active returns the currently active academic period, used as the engine's
// default planning horizon when a request omits one.
func (s *AcademicPeriodService) Active(ctx context.Context) (*models.AcademicPeriod, error) {
	period, err := s.repo.FindActive(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active academic period")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic period")
	}
	return period, nil
}

// Create opens a new academic period.
func (s *AcademicPeriodService) Create(ctx context.Context, req CreateAcademicPeriodRequest) (*models.AcademicPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic period payload")
	}

	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByYearAndType(ctx, req.AcademicYear, req.Type, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic period uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an academic period with this year and type already exists")
	}

	period := &models.AcademicPeriod{
		Name:         req.Name,
		Type:         req.Type,
		AcademicYear: req.AcademicYear,
		StartDate:    start,
		EndDate:      end,
	}

	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic period")
	}
	return period, nil
}

// Update modifies an existing academic period's name and date range.
func (s *AcademicPeriodService) Update(ctx context.Context, id string, req UpdateAcademicPeriodRequest) (*models.AcademicPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic period payload")
	}

	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic period")
	}

	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	period.Name = req.Name
	period.StartDate = start
	period.EndDate = end

	if err := s.repo.Update(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic period")
	}
	return period, nil
}

// Activate marks the given academic period active, deactivating the rest.
func (s *AcademicPeriodService) Activate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "academic period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic period")
	}
	if err := s.repo.SetActive(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate academic period")
	}
	return nil
}

// Delete removes an academic period when no catalog sections reference it.
func (s *AcademicPeriodService) Delete(ctx context.Context, id string) error {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "academic period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic period")
	}

	count, err := s.repo.CountSections(ctx, period.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic period dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "academic period still backs catalog sections")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic period")
	}
	return nil
}

func parsePeriodDates(startRaw, endRaw string) (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", startRaw)
	if err != nil {
		return start, end, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start_date")
	}
	end, err = time.Parse("2006-01-02", endRaw)
	if err != nil {
		return start, end, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end_date")
	}
	if !end.After(start) {
		return start, end, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}
	return start, end, nil
}
