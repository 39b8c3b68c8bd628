package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/models"
)

type mockProfessorRepo struct {
	items       map[string]*models.Professor
	emailIndex  map[string]string
	nipIndex    map[string]string
	listResult  []models.Professor
	listTotal   int
	listErr     error
	deactivated []string
}

func (m *mockProfessorRepo) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockProfessorRepo) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	if professor, ok := m.items[id]; ok {
		cp := *professor
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfessorRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if owner, ok := m.emailIndex[email]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProfessorRepo) ExistsByNIP(ctx context.Context, nip, excludeID string) (bool, error) {
	if owner, ok := m.nipIndex[nip]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProfessorRepo) Create(ctx context.Context, professor *models.Professor) error {
	if m.items == nil {
		m.items = make(map[string]*models.Professor)
	}
	if professor.ID == "" {
		professor.ID = "generated"
	}
	now := time.Now()
	professor.CreatedAt = now
	professor.UpdatedAt = now
	cp := *professor
	m.items[professor.ID] = &cp
	return nil
}

func (m *mockProfessorRepo) Update(ctx context.Context, professor *models.Professor) error {
	if m.items == nil {
		m.items = make(map[string]*models.Professor)
	}
	cp := *professor
	m.items[professor.ID] = &cp
	return nil
}

func (m *mockProfessorRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if t, ok := m.items[id]; ok {
		t.Active = false
	}
	return nil
}

func TestProfessorServiceCreate(t *testing.T) {
	repo := &mockProfessorRepo{}
	service := NewProfessorService(repo, validator.New(), zap.NewNop())

	professor, err := service.Create(context.Background(), CreateProfessorRequest{
		Email:    "teach@example.com",
		FullName: "Professor One",
	})
	require.NoError(t, err)
	assert.Equal(t, "teach@example.com", professor.Email)
	assert.True(t, professor.Active)
	assert.Len(t, repo.items, 1)
}

func TestProfessorServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockProfessorRepo{emailIndex: map[string]string{"teach@example.com": "another"}}
	service := NewProfessorService(repo, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateProfessorRequest{
		Email:    "teach@example.com",
		FullName: "Professor One",
	})
	require.Error(t, err)
}

func TestProfessorServiceUpdate(t *testing.T) {
	repo := &mockProfessorRepo{
		items: map[string]*models.Professor{
			"t1": {ID: "t1", Email: "teach@example.com", FullName: "Professor One", Active: true},
		},
	}
	service := NewProfessorService(repo, validator.New(), zap.NewNop())

	active := true
	updated, err := service.Update(context.Background(), "t1", UpdateProfessorRequest{
		Email:    "updated@example.com",
		FullName: "Professor Updated",
		Active:   &active,
	})
	require.NoError(t, err)
	assert.Equal(t, "updated@example.com", updated.Email)
	assert.Equal(t, "Professor Updated", updated.FullName)
}

func TestProfessorServiceDeactivate(t *testing.T) {
	repo := &mockProfessorRepo{
		items: map[string]*models.Professor{
			"t1": {ID: "t1", Email: "teach@example.com", FullName: "Professor One", Active: true},
		},
	}
	service := NewProfessorService(repo, validator.New(), zap.NewNop())

	err := service.Deactivate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, repo.deactivated)
}
