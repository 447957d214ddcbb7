package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.User{},
		&models.Shop{},
		&models.Category{},
		&models.Brand{},
		&models.Product{},
		&models.ProductInfo{},
		&models.Parameter{},
		&models.ProductParameter{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

type seededShop struct {
	shop     models.Shop
	category models.Category
}

func seedShop(t *testing.T, db *gorm.DB, accepting bool) seededShop {
	t.Helper()
	owner := models.User{Email: uuid.NewString() + "@shop.test", PasswordHash: "x", FirstName: "a", LastName: "b", Type: "shop", IsActive: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	shop := models.Shop{UserID: owner.ID, Name: "shop", State: accepting}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	category := models.Category{Name: uuid.NewString()}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return seededShop{shop: shop, category: category}
}

func seedListing(t *testing.T, db *gorm.DB, s seededShop, externalID int) models.ProductInfo {
	t.Helper()
	product := models.Product{Name: fmt.Sprintf("widget-%d", externalID), CategoryID: s.category.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	info := models.ProductInfo{
		ProductID:        product.ID,
		ShopID:           s.shop.ID,
		ExternalID:       externalID,
		Quantity:         5,
		Price:            decimal.NewFromInt(100),
		RecommendedPrice: decimal.NewFromInt(110),
	}
	if err := db.Create(&info).Error; err != nil {
		t.Fatalf("seed product info: %v", err)
	}
	return info
}

func TestBrowseHidesClosedShops(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	open := seedShop(t, db, true)
	closed := seedShop(t, db, false)
	visible := seedListing(t, db, open, 1)
	seedListing(t, db, closed, 2)

	page, err := svc.Browse(context.Background(), Filters{}, pagination.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Listings) != 1 {
		t.Fatalf("expected one visible listing, got %d", len(page.Listings))
	}
	if page.Listings[0].ID != visible.ID {
		t.Fatalf("expected open shop listing, got %s", page.Listings[0].ID)
	}
}

func TestBrowseFiltersByCategory(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	first := seedShop(t, db, true)
	second := seedShop(t, db, true)
	wanted := seedListing(t, db, first, 1)
	seedListing(t, db, second, 2)

	page, err := svc.Browse(context.Background(), Filters{CategoryID: &first.category.ID}, pagination.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Listings) != 1 || page.Listings[0].ID != wanted.ID {
		t.Fatalf("unexpected category filter result: %+v", page.Listings)
	}
}

func TestBrowsePaginates(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	shop := seedShop(t, db, true)
	for i := 1; i <= 3; i++ {
		seedListing(t, db, shop, i)
	}

	first, err := svc.Browse(context.Background(), Filters{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Listings) != 2 || first.NextCursor == "" {
		t.Fatalf("expected 2 listings and a cursor, got %d %q", len(first.Listings), first.NextCursor)
	}

	rest, err := svc.Browse(context.Background(), Filters{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest.Listings) != 1 || rest.NextCursor != "" {
		t.Fatalf("expected final page of 1, got %d %q", len(rest.Listings), rest.NextCursor)
	}

	seen := map[uuid.UUID]struct{}{}
	for _, listing := range append(first.Listings, rest.Listings...) {
		if _, dup := seen[listing.ID]; dup {
			t.Fatalf("listing %s appeared twice across pages", listing.ID)
		}
		seen[listing.ID] = struct{}{}
	}
}

func TestBrowseRendersParameters(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	shop := seedShop(t, db, true)
	info := seedListing(t, db, shop, 1)

	param := models.Parameter{Name: "color"}
	if err := db.Create(&param).Error; err != nil {
		t.Fatalf("seed parameter: %v", err)
	}
	link := models.ProductParameter{ProductInfoID: info.ID, ParameterID: param.ID, Value: "red"}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("seed product parameter: %v", err)
	}

	page, err := svc.Browse(context.Background(), Filters{}, pagination.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := page.Listings[0].Parameters["color"]; got != "red" {
		t.Fatalf("expected color=red, got %q", got)
	}
}
