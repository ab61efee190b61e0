package material

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/breaddesk/breaddesk-backend/pkg/db"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes material management operations.
type Service interface {
	ListMaterials(ctx context.Context) ([]models.Material, error)
	CreateMaterial(ctx context.Context, materialName string) (*models.Material, error)
	UpdateMaterial(ctx context.Context, id uint, materialName string) (*models.Material, error)
	DeleteMaterial(ctx context.Context, id uint) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a material service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("material repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// ListMaterials returns every material with its product count.
func (s *service) ListMaterials(ctx context.Context) ([]models.Material, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list materials")
	}
	return rows, nil
}

// CreateMaterial inserts a new material.
func (s *service) CreateMaterial(ctx context.Context, materialName string) (*models.Material, error) {
	name, err := normalizeName(materialName)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.Material{MaterialName: name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert material")
	}
	return created, nil
}

// UpdateMaterial renames an existing material.
func (s *service) UpdateMaterial(ctx context.Context, id uint, materialName string) (*models.Material, error) {
	name, err := normalizeName(materialName)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load material")
	}

	row.MaterialName = name
	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update material")
	}
	return updated, nil
}

// DeleteMaterial removes the material and detaches it from every product in
// one transaction.
func (s *service) DeleteMaterial(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load material")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete material")
	}
	return nil
}

func normalizeName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "material_name is required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "material_name must be at most 255 characters")
	}
	return name, nil
}
