package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
	"gorm.io/gorm"
)

// Service exposes category management operations.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uint, input UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	CategoryName string
	Image        *storage.File
}

// UpdateCategoryInput holds optional mutation values for a category. A nil
// Image keeps the current blob untouched.
type UpdateCategoryInput struct {
	CategoryName *string
	Image        *storage.File
}

type service struct {
	repo  *Repository
	store storage.Store
}

// NewService constructs a category service instance.
func NewService(repo *Repository, store storage.Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{repo: repo, store: store}, nil
}

// ListCategories returns every category with its product count.
func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	return rows, nil
}

// GetCategory loads one category with its products fully expanded.
func (s *service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	row, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	return row, nil
}

// CreateCategory inserts the category, uploading the display image first when
// one was provided.
func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	name, err := normalizeName(input.CategoryName)
	if err != nil {
		return nil, err
	}

	row := &models.Category{CategoryName: name}

	if input.Image != nil {
		obj, err := s.store.Upload(ctx, storage.FolderCategory, input.Image.Name, input.Image.ContentType, input.Image.Reader)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: upload category image")
		}
		row.ImageKey = &obj.Key
		row.ImageURL = &obj.URL
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if row.ImageKey != nil {
			_ = s.store.Delete(ctx, *row.ImageKey)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return created, nil
}

// UpdateCategory applies a partial update. A new image replaces the current
// one: the old blob is deleted before the new upload is stored.
func (s *service) UpdateCategory(ctx context.Context, id uint, input UpdateCategoryInput) (*models.Category, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}

	if input.CategoryName != nil {
		name, err := normalizeName(*input.CategoryName)
		if err != nil {
			return nil, err
		}
		row.CategoryName = name
	}

	if input.Image != nil {
		if row.ImageKey != nil {
			if err := s.store.Delete(ctx, *row.ImageKey); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete previous category image")
			}
		}
		obj, err := s.store.Upload(ctx, storage.FolderCategory, input.Image.Name, input.Image.ContentType, input.Image.Reader)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: upload category image")
		}
		row.ImageKey = &obj.Key
		row.ImageURL = &obj.URL
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
	}
	return updated, nil
}

// DeleteCategory removes the category's blob, then its row. Products that
// referenced the category are left in place.
func (s *service) DeleteCategory(ctx context.Context, id uint) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}

	if row.ImageKey != nil {
		if err := s.store.Delete(ctx, *row.ImageKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete category image")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category")
	}
	return nil
}

func normalizeName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "category_name is required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "category_name must be at most 255 characters")
	}
	return name, nil
}
