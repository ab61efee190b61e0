package product

import (
	"context"
	"fmt"
	"strings"
	"testing"

	category "github.com/breaddesk/breaddesk-backend/internal/categories"
	material "github.com/breaddesk/breaddesk-backend/internal/materials"
	"github.com/breaddesk/breaddesk-backend/pkg/db"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
	"github.com/breaddesk/breaddesk-backend/pkg/storage/storagetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, conn.AutoMigrate(
		&models.Category{},
		&models.Material{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductSizeImage{},
	), "migrate")
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB, *storagetest.Store) {
	t.Helper()
	conn := newTestDB(t)
	store := storagetest.New()
	svc, err := NewService(
		NewRepository(conn),
		db.NewWithConn(conn),
		category.NewRepository(conn),
		material.NewRepository(conn),
		store,
	)
	require.NoError(t, err, "NewService")
	return svc, conn, store
}

func seedCategory(t *testing.T, conn *gorm.DB, name string) *models.Category {
	t.Helper()
	row := &models.Category{CategoryName: name}
	require.NoError(t, conn.Create(row).Error, "seed category")
	return row
}

func seedMaterial(t *testing.T, conn *gorm.DB, name string) *models.Material {
	t.Helper()
	row := &models.Material{MaterialName: name}
	require.NoError(t, conn.Create(row).Error, "seed material")
	return row
}

func strPtr(v string) *string { return &v }

func TestCreateProductAttachesMaterials(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	cat := seedCategory(t, conn, "Tables")
	oak := seedMaterial(t, conn, "Oak")
	pine := seedMaterial(t, conn, "Pine")

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Farm Table",
		ProductCode: "TBL-001",
		CategoryID:  cat.ID,
		Color:       strPtr("walnut"),
		MaterialIDs: []uint{oak.ID, pine.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, created.Category)
	require.Equal(t, cat.ID, created.Category.ID)
	require.Len(t, created.Materials, 2)
}

func TestCreateProductDuplicateCode(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	cat := seedCategory(t, conn, "Tables")
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Table A",
		ProductCode: "TBL-001",
		CategoryID:  cat.ID,
	})
	require.NoError(t, err)

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Table B",
		ProductCode: "TBL-001",
		CategoryID:  cat.ID,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestCreateProductUnknownMaterialWritesNothing(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	cat := seedCategory(t, conn, "Tables")
	oak := seedMaterial(t, conn, "Oak")

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Ghost Table",
		ProductCode: "TBL-404",
		CategoryID:  cat.ID,
		MaterialIDs: []uint{oak.ID, 9999},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count, "no product row should exist after a failed attach")
}

func TestCreateProductUnknownCategory(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Orphan",
		ProductCode: "ORP-1",
		CategoryID:  4040,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestUpdateProductCodeUniquenessExcludesSelf(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	cat := seedCategory(t, conn, "Tables")
	a, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Table A", ProductCode: "TBL-A", CategoryID: cat.ID,
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Table B", ProductCode: "TBL-B", CategoryID: cat.ID,
	})
	require.NoError(t, err)

	// Re-submitting its own code is not a conflict.
	updated, err := svc.UpdateProduct(context.Background(), a.ID, UpdateProductInput{
		ProductCode: strPtr("TBL-A"),
		ProductName: strPtr("Table A2"),
	})
	require.NoError(t, err)
	require.Equal(t, "Table A2", updated.ProductName)

	_, err = svc.UpdateProduct(context.Background(), a.ID, UpdateProductInput{
		ProductCode: strPtr("TBL-B"),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestUpdateProductSyncsMaterials(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	cat := seedCategory(t, conn, "Chairs")
	oak := seedMaterial(t, conn, "Oak")
	pine := seedMaterial(t, conn, "Pine")
	rattan := seedMaterial(t, conn, "Rattan")

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Chair",
		ProductCode: "CH-1",
		CategoryID:  cat.ID,
		MaterialIDs: []uint{oak.ID, pine.ID},
	})
	require.NoError(t, err)

	ids := []uint{rattan.ID}
	updated, err := svc.UpdateProduct(context.Background(), created.ID, UpdateProductInput{
		MaterialIDs: &ids,
	})
	require.NoError(t, err)
	require.Len(t, updated.Materials, 1)
	require.Equal(t, rattan.ID, updated.Materials[0].ID)

	// Omitting material_ids leaves the set alone.
	updated, err = svc.UpdateProduct(context.Background(), created.ID, UpdateProductInput{
		ProductName: strPtr("Rattan Chair"),
	})
	require.NoError(t, err)
	require.Len(t, updated.Materials, 1)

	// An explicit empty set detaches everything.
	empty := []uint{}
	updated, err = svc.UpdateProduct(context.Background(), created.ID, UpdateProductInput{
		MaterialIDs: &empty,
	})
	require.NoError(t, err)
	require.Empty(t, updated.Materials)
}

func TestDeleteProductCascades(t *testing.T) {
	t.Parallel()
	svc, conn, store := newTestService(t)

	cat := seedCategory(t, conn, "Beds")
	oak := seedMaterial(t, conn, "Oak")
	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Bed",
		ProductCode: "BED-1",
		CategoryID:  cat.ID,
		MaterialIDs: []uint{oak.ID},
	})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		obj, err := store.Upload(ctx, storage.FolderProductImages, fmt.Sprintf("g%d.png", i), "image/png", strings.NewReader("img"))
		require.NoError(t, err)
		require.NoError(t, conn.Create(&models.ProductImage{
			ProductID: created.ID,
			ImageKey:  obj.Key,
			ImageURL:  obj.URL,
			SortOrder: i,
		}).Error)
	}
	sizeObj, err := store.Upload(ctx, storage.FolderProductSizeImage, "size.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.ProductSizeImage{
		ProductID: created.ID,
		ImageKey:  sizeObj.Key,
		ImageURL:  sizeObj.URL,
	}).Error)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	require.Zero(t, store.Len(), "every blob should be gone")
	var imageCount, sizeCount, joinCount int64
	require.NoError(t, conn.Model(&models.ProductImage{}).Where("product_id = ?", created.ID).Count(&imageCount).Error)
	require.NoError(t, conn.Model(&models.ProductSizeImage{}).Where("product_id = ?", created.ID).Count(&sizeCount).Error)
	require.NoError(t, conn.Table("product_materials").Where("product_id = ?", created.ID).Count(&joinCount).Error)
	require.Zero(t, imageCount)
	require.Zero(t, sizeCount)
	require.Zero(t, joinCount)

	_, err = svc.GetProduct(ctx, created.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestFilterProductsConjunctive(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	tables := seedCategory(t, conn, "Tables")
	chairs := seedCategory(t, conn, "Chairs")
	oak := seedMaterial(t, conn, "Oak")

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Oak Table", ProductCode: "TBL-OAK", CategoryID: tables.ID, MaterialIDs: []uint{oak.ID},
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Oak Chair", ProductCode: "CH-OAK", CategoryID: chairs.ID, MaterialIDs: []uint{oak.ID},
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Glass Table", ProductCode: "TBL-GLS", CategoryID: tables.ID,
	})
	require.NoError(t, err)

	rows, err := svc.FilterProducts(context.Background(), FilterQuery{
		CategoryID: &tables.ID,
		MaterialID: &oak.ID,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Oak Table", rows[0].ProductName)

	// Search is case-insensitive and also matches the code.
	rows, err = svc.FilterProducts(context.Background(), FilterQuery{Search: "tbl-gls"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Glass Table", rows[0].ProductName)

	rows, err = svc.FilterProducts(context.Background(), FilterQuery{Search: "oak"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestSearchProductsMatchesNameOnly(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	cat := seedCategory(t, conn, "Tables")
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Walnut Desk", ProductCode: "OAK-77", CategoryID: cat.ID,
	})
	require.NoError(t, err)

	rows, err := svc.SearchProducts(context.Background(), "walnut")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// The code contains "oak" but the name does not.
	rows, err = svc.SearchProducts(context.Background(), "oak")
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = svc.SearchProducts(context.Background(), "   ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestSearchProductsLengthLimitCountsRunes(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	// 255 multibyte runes exceed 255 bytes but are still a legal needle.
	rows, err := svc.SearchProducts(context.Background(), strings.Repeat("é", 255))
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = svc.SearchProducts(context.Background(), strings.Repeat("é", 256))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestRecommendedProducts(t *testing.T) {
	t.Parallel()
	svc, conn, store := newTestService(t)

	cat := seedCategory(t, conn, "Tables")
	viewed, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Viewed", ProductCode: "V-1", CategoryID: cat.ID,
	})
	require.NoError(t, err)

	withImage, err := svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Pictured", ProductCode: "P-1", CategoryID: cat.ID,
	})
	require.NoError(t, err)
	obj, err := store.Upload(context.Background(), storage.FolderProductImages, "p.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.ProductImage{
		ProductID: withImage.ID, ImageKey: obj.Key, ImageURL: obj.URL,
	}).Error)

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		ProductName: "Bare", ProductCode: "B-1", CategoryID: cat.ID,
	})
	require.NoError(t, err)

	rows, err := svc.RecommendedProducts(context.Background(), viewed.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1, "only products with at least one image qualify")
	require.Equal(t, withImage.ID, rows[0].ID)
}
