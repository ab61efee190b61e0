package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/breaddesk/breaddesk-backend/pkg/db"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
	"gorm.io/gorm"
)

// DefaultRecommendedLimit is how many products a recommendation call returns
// unless the caller asks for fewer or more.
const DefaultRecommendedLimit = 4

// Service exposes product management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, categoryID *uint) ([]models.Product, error)
	FilterProducts(ctx context.Context, filter FilterQuery) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	RecommendedProducts(ctx context.Context, excludeID uint, limit int) ([]models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	ProductName  string
	ProductCode  string
	CategoryID   uint
	Description  *string
	Color        *string
	Finishing    *string
	ShopeeURL    *string
	TokopediaURL *string
	MaterialIDs  []uint
}

// UpdateProductInput holds optional mutation values for a product. A nil
// MaterialIDs leaves the attachment set untouched; an empty one detaches all.
type UpdateProductInput struct {
	ProductName  *string
	ProductCode  *string
	CategoryID   *uint
	Description  *string
	Color        *string
	Finishing    *string
	ShopeeURL    *string
	TokopediaURL *string
	MaterialIDs  *[]uint
}

type categoryLoader interface {
	FindByID(ctx context.Context, id uint) (*models.Category, error)
}

type materialLoader interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Material, error)
}

type service struct {
	repo       *Repository
	dbClient   *db.Client
	categories categoryLoader
	materials  materialLoader
	store      storage.Store
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, categories categoryLoader, materials materialLoader, store storage.Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if materials == nil {
		return nil, fmt.Errorf("material repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{
		repo:       repo,
		dbClient:   dbClient,
		categories: categories,
		materials:  materials,
		store:      store,
	}, nil
}

// CreateProduct inserts the product and attaches its materials atomically.
// Every referenced material must exist or nothing is written.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.ProductName)
	code := strings.TrimSpace(input.ProductCode)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_code is required")
	}

	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	taken, err := s.repo.CodeExists(ctx, code, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product code")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_code has already been taken")
	}

	materials, err := s.resolveMaterials(ctx, input.MaterialIDs)
	if err != nil {
		return nil, err
	}

	row := &models.Product{
		ProductName:  name,
		ProductCode:  code,
		CategoryID:   input.CategoryID,
		Description:  input.Description,
		Color:        input.Color,
		Finishing:    input.Finishing,
		ShopeeURL:    input.ShopeeURL,
		TokopediaURL: input.TokopediaURL,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.Create(ctx, row)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_products_product_code") {
				return pkgerrors.New(pkgerrors.CodeValidation, "product_code has already been taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		if len(materials) > 0 {
			if err := txRepo.ReplaceMaterials(ctx, created, materials); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: attach materials")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	detail, err := s.repo.GetDetail(ctx, row.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product detail")
	}
	return detail, nil
}

// UpdateProduct applies a partial update. When MaterialIDs is present the
// attachment set is replaced wholesale inside the same transaction.
func (s *service) UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	if input.ProductCode != nil {
		code := strings.TrimSpace(*input.ProductCode)
		if code == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_code cannot be empty")
		}
		taken, err := s.repo.CodeExists(ctx, code, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product code")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_code has already been taken")
		}
	}

	var materials []models.Material
	if input.MaterialIDs != nil {
		materials, err = s.resolveMaterials(ctx, *input.MaterialIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applyUpdate(row, input)
		if _, err := txRepo.Update(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "idx_products_product_code") {
				return pkgerrors.New(pkgerrors.CodeValidation, "product_code has already been taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}

		if input.MaterialIDs != nil {
			if err := txRepo.ReplaceMaterials(ctx, row, materials); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sync materials")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product detail")
	}
	return detail, nil
}

// DeleteProduct removes every gallery blob and the size-chart blob, then the
// rows (images, size image, material attachments, product) in one
// transaction.
func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list product images")
	}
	for _, img := range images {
		if err := s.store.Delete(ctx, img.ImageKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete product image")
		}
	}

	sizeImage, err := s.repo.FindSizeImage(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size image")
	}
	if sizeImage != nil {
		if err := s.store.Delete(ctx, sizeImage.ImageKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete size image")
		}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteCascade(ctx, id)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// GetProduct loads one product with its relations.
func (s *service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	row, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return row, nil
}

// ListProducts returns products with relations, optionally narrowed to one
// category.
func (s *service) ListProducts(ctx context.Context, categoryID *uint) ([]models.Product, error) {
	rows, err := s.repo.List(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return rows, nil
}

// FilterProducts narrows the listing by every criterion set on the filter.
func (s *service) FilterProducts(ctx context.Context, filter FilterQuery) ([]models.Product, error) {
	rows, err := s.repo.Filter(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: filter products")
	}
	return rows, nil
}

// SearchProducts matches the needle against product names only.
func (s *service) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	needle := strings.TrimSpace(query)
	if needle == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "q is required")
	}
	if utf8.RuneCountInString(needle) > 255 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "q must be at most 255 characters")
	}

	rows, err := s.repo.SearchByName(ctx, needle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search products")
	}
	return rows, nil
}

// RecommendedProducts returns a fresh random pick of products that carry at
// least one gallery image, excluding the one being viewed.
func (s *service) RecommendedProducts(ctx context.Context, excludeID uint, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultRecommendedLimit
	}
	rows, err := s.repo.Recommended(ctx, excludeID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recommended products")
	}
	return rows, nil
}

func (s *service) ensureCategory(ctx context.Context, id uint) error {
	if id == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	return nil
}

// resolveMaterials loads the referenced materials and fails if any ID is
// unknown, so an attach is always all-or-nothing.
func (s *service) resolveMaterials(ctx context.Context, ids []uint) ([]models.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	rows, err := s.materials.FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load materials")
	}
	if len(rows) != len(unique) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more materials do not exist")
	}
	return rows, nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.ProductName != nil {
		product.ProductName = strings.TrimSpace(*input.ProductName)
	}
	if input.ProductCode != nil {
		product.ProductCode = strings.TrimSpace(*input.ProductCode)
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Color != nil {
		product.Color = input.Color
	}
	if input.Finishing != nil {
		product.Finishing = input.Finishing
	}
	if input.ShopeeURL != nil {
		product.ShopeeURL = input.ShopeeURL
	}
	if input.TokopediaURL != nil {
		product.TokopediaURL = input.TokopediaURL
	}
}
