package material

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/breaddesk/breaddesk-backend/pkg/db"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Category{},
		&models.Material{},
		&models.Product{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewWithConn(conn))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, conn
}

func TestCreateMaterialValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	if _, err := svc.CreateMaterial(context.Background(), "   "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := svc.CreateMaterial(context.Background(), strings.Repeat("x", 256)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for long name, got %v", err)
	}

	created, err := svc.CreateMaterial(context.Background(), "  Teak Wood ")
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if created.MaterialName != "Teak Wood" {
		t.Fatalf("expected trimmed name, got %q", created.MaterialName)
	}
}

func TestUpdateMaterialNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.UpdateMaterial(context.Background(), 404, "Rattan")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteMaterialDetachesProducts(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)

	created, err := svc.CreateMaterial(context.Background(), "Oak")
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}

	cat := &models.Category{CategoryName: "Tables"}
	if err := conn.Create(cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := &models.Product{
		ProductName: "Oak Table",
		ProductCode: "OAK-1",
		CategoryID:  cat.ID,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := conn.Model(product).Association("Materials").Append(created); err != nil {
		t.Fatalf("attach material: %v", err)
	}

	if err := svc.DeleteMaterial(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteMaterial: %v", err)
	}

	var joinCount int64
	if err := conn.Table("product_materials").Where("material_id = ?", created.ID).Count(&joinCount).Error; err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if joinCount != 0 {
		t.Fatalf("expected join rows removed, got %d", joinCount)
	}

	var remaining models.Product
	if err := conn.First(&remaining, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("product should survive material deletion: %v", err)
	}
}

func TestListMaterialsProductCount(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)

	oak, err := svc.CreateMaterial(context.Background(), "Oak")
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	pine, err := svc.CreateMaterial(context.Background(), "Pine")
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}

	cat := &models.Category{CategoryName: "Chairs"}
	if err := conn.Create(cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := &models.Product{ProductName: "Oak Chair", ProductCode: "CH-1", CategoryID: cat.ID}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := conn.Model(product).Association("Materials").Append(oak); err != nil {
		t.Fatalf("attach material: %v", err)
	}

	rows, err := svc.ListMaterials(context.Background())
	if err != nil {
		t.Fatalf("ListMaterials: %v", err)
	}
	counts := map[uint]int64{}
	for _, row := range rows {
		counts[row.ID] = row.ProductCount
	}
	if counts[oak.ID] != 1 {
		t.Fatalf("expected 1 product for oak, got %d", counts[oak.ID])
	}
	if counts[pine.ID] != 0 {
		t.Fatalf("expected 0 products for pine, got %d", counts[pine.ID])
	}
}
