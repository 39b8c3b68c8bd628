package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler/internal/models"
)

// AcademicPeriodRepository handles persistence for academic periods.
type AcademicPeriodRepository struct {
	db *sqlx.DB
}

// NewAcademicPeriodRepository instantiates an academic period repository.
func NewAcademicPeriodRepository(db *sqlx.DB) *AcademicPeriodRepository {
	return &AcademicPeriodRepository{db: db}
}

// List returns academic_periods matching provided filters.
func (r *AcademicPeriodRepository) List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, int, error) {
	base := "FROM academic_periods WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "start_date"
	}
	allowedSorts := map[string]bool{
		"name":          true,
		"start_date":    true,
		"end_date":      true,
		"academic_year": true,
		"created_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, type, academic_year, start_date, end_date, is_active, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)

	var academic_periods []models.AcademicPeriod
	if err := r.db.SelectContext(ctx, &academic_periods, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic_periods: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count academic_periods: %w", err)
	}

	return academic_periods, total, nil
}

// FindByID loads a academicPeriod by identifier.
func (r *AcademicPeriodRepository) FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	const query = `SELECT id, name, type, academic_year, start_date, end_date, is_active, created_at, updated_at FROM academic_periods WHERE id = $1`
	var academicPeriod models.AcademicPeriod
	if err := r.db.GetContext(ctx, &academicPeriod, query, id); err != nil {
		return nil, err
	}
	return &academicPeriod, nil
}

// FindActive returns the currently active academicPeriod.
func (r *AcademicPeriodRepository) FindActive(ctx context.Context) (*models.AcademicPeriod, error) {
	const query = `SELECT id, name, type, academic_year, start_date, end_date, is_active, created_at, updated_at FROM academic_periods WHERE is_active = TRUE LIMIT 1`
	var academicPeriod models.AcademicPeriod
	if err := r.db.GetContext(ctx, &academicPeriod, query); err != nil {
		return nil, err
	}
	return &academicPeriod, nil
}

// ExistsByYearAndType checks if a academicPeriod with the same academic year and type exists.
func (r *AcademicPeriodRepository) ExistsByYearAndType(ctx context.Context, academicYear string, periodType models.AcademicPeriodType, excludeID string) (bool, error) {
	base := "SELECT 1 FROM academic_periods WHERE academic_year = $1 AND type = $2"
	args := []interface{}{academicYear, periodType}
	if excludeID != "" {
		base += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check academicPeriod uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new academicPeriod record.
func (r *AcademicPeriodRepository) Create(ctx context.Context, academicPeriod *models.AcademicPeriod) error {
	if academicPeriod.ID == "" {
		academicPeriod.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if academicPeriod.CreatedAt.IsZero() {
		academicPeriod.CreatedAt = now
	}
	academicPeriod.UpdatedAt = now

	const query = `INSERT INTO academic_periods (id, name, type, academic_year, start_date, end_date, is_active, created_at, updated_at) VALUES (:id, :name, :type, :academic_year, :start_date, :end_date, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, academicPeriod); err != nil {
		return fmt.Errorf("create academicPeriod: %w", err)
	}
	return nil
}

// Update modifies an existing academicPeriod.
func (r *AcademicPeriodRepository) Update(ctx context.Context, academicPeriod *models.AcademicPeriod) error {
	academicPeriod.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_periods SET name = :name, type = :type, academic_year = :academic_year, start_date = :start_date, end_date = :end_date, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, academicPeriod); err != nil {
		return fmt.Errorf("update academicPeriod: %w", err)
	}
	return nil
}

// SetActive marks the provided academicPeriod as active and deactivates the rest.
func (r *AcademicPeriodRepository) SetActive(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set active tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE academic_periods SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate other academic_periods: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE academic_periods SET is_active = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("activate academicPeriod: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit set active tx: %w", err)
	}
	return nil
}

// Delete removes a academicPeriod permanently.
func (r *AcademicPeriodRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM academic_periods WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete academicPeriod: %w", err)
	}
	return nil
}

// CountSections returns the number of catalog sections offered within the
// period, used to guard deletion of a period still backing a catalog.
func (r *AcademicPeriodRepository) CountSections(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM sections WHERE academic_period_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count period sections: %w", err)
	}
	return count, nil
}
