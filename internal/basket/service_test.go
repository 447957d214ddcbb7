package basket

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

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
		&models.Contact{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func seedBuyer(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Email: uuid.NewString() + "@buyer.test", PasswordHash: "x", FirstName: "a", LastName: "b", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed buyer: %v", err)
	}
	return user
}

func seedListing(t *testing.T, db *gorm.DB, qty int, price int64) models.ProductInfo {
	t.Helper()
	owner := models.User{Email: uuid.NewString() + "@shop.test", PasswordHash: "x", FirstName: "a", LastName: "b", Type: "shop", IsActive: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	shop := models.Shop{UserID: owner.ID, Name: "shop", State: true}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	category := models.Category{Name: uuid.NewString()}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := models.Product{Name: "widget", CategoryID: category.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	info := models.ProductInfo{
		ProductID:        product.ID,
		ShopID:           shop.ID,
		ExternalID:       1,
		Quantity:         qty,
		Price:            decimal.NewFromInt(price),
		RecommendedPrice: decimal.NewFromInt(price),
	}
	if err := db.Create(&info).Error; err != nil {
		t.Fatalf("seed product info: %v", err)
	}
	return info
}

func TestGetCreatesEmptyBasketOnFirstTouch(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)

	view, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty basket, got %d items", len(view.Items))
	}
	if !view.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", view.Total)
	}

	// second call returns the same basket
	again, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.OrderID != view.OrderID {
		t.Fatalf("expected single basket per user, got %s and %s", view.OrderID, again.OrderID)
	}
}

func TestAddItemsComputesTotals(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)
	info := seedListing(t, db, 10, 150)

	result, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{
		{ProductInfoID: info.ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied != 1 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	view, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}
	if !view.Total.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("expected total 450, got %s", view.Total)
	}
}

func TestAddItemsRejectsDuplicateLine(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)
	info := seedListing(t, db, 10, 100)

	if _, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{{ProductInfoID: info.ID, Quantity: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{{ProductInfoID: info.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected rejection, got %+v", result)
	}
	if result.Errors[0].Code != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %s", result.Errors[0].Code)
	}

	// quantity of the original line must be untouched
	view, _ := svc.Get(context.Background(), user.ID)
	if view.Items[0].Quantity != 2 {
		t.Fatalf("expected original quantity 2, got %d", view.Items[0].Quantity)
	}
}

func TestAddItemsOverStockCreatesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)
	info := seedListing(t, db, 10, 100)

	result, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{
		{ProductInfoID: info.ID, Quantity: 20},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied != 0 {
		t.Fatalf("expected zero applied, got %d", result.Applied)
	}
	if len(result.Errors) != 1 || result.Errors[0].Code != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected itemized stock error, got %+v", result.Errors)
	}

	view, _ := svc.Get(context.Background(), user.ID)
	if len(view.Items) != 0 {
		t.Fatalf("expected empty basket, got %d items", len(view.Items))
	}
}

func TestAddItemsPartialSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)
	info := seedListing(t, db, 10, 100)

	result, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{
		{ProductInfoID: info.ID, Quantity: 2},
		{ProductInfoID: uuid.New(), Quantity: 1},
		{ProductInfoID: info.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied != 1 {
		t.Fatalf("expected 1 applied, got %d", result.Applied)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %+v", result.Errors)
	}
	if result.Errors[0].Code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown listing, got %s", result.Errors[0].Code)
	}
	if result.Errors[1].Code != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for repeated listing, got %s", result.Errors[1].Code)
	}
}

func TestUpdateItemsReplacesQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)
	info := seedListing(t, db, 10, 100)

	if _, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{{ProductInfoID: info.ID, Quantity: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.UpdateItems(context.Background(), user.ID, []ItemEntry{{ProductInfoID: info.ID, Quantity: 7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied != 1 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	view, _ := svc.Get(context.Background(), user.ID)
	if view.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", view.Items[0].Quantity)
	}
}

func TestUpdateItemsReportsMissingLinePerEntry(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)
	info := seedListing(t, db, 10, 100)

	if _, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{{ProductInfoID: info.ID, Quantity: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.UpdateItems(context.Background(), user.ID, []ItemEntry{
		{ProductInfoID: uuid.New(), Quantity: 1},
		{ProductInfoID: info.ID, Quantity: 4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied != 1 {
		t.Fatalf("expected 1 applied, got %d", result.Applied)
	}
	if len(result.Errors) != 1 || result.Errors[0].Code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found entry error, got %+v", result.Errors)
	}
}

func TestRemoveItemsIgnoresUnknownTokens(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	user := seedBuyer(t, db)
	info := seedListing(t, db, 10, 100)

	if _, err := svc.AddItems(context.Background(), user.ID, []ItemEntry{{ProductInfoID: info.ID, Quantity: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, _ := svc.Get(context.Background(), user.ID)
	lineID := view.Items[0].LineID

	raw := fmt.Sprintf("%s,%s,not-a-uuid", lineID, uuid.NewString())
	deleted, err := svc.RemoveItems(context.Background(), user.ID, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	after, _ := svc.Get(context.Background(), user.ID)
	if len(after.Items) != 0 {
		t.Fatalf("expected empty basket, got %d items", len(after.Items))
	}
}

func TestRemoveItemsCannotTouchForeignBasket(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	owner := seedBuyer(t, db)
	intruder := seedBuyer(t, db)
	info := seedListing(t, db, 10, 100)

	if _, err := svc.AddItems(context.Background(), owner.ID, []ItemEntry{{ProductInfoID: info.ID, Quantity: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, _ := svc.Get(context.Background(), owner.ID)
	lineID := view.Items[0].LineID

	deleted, err := svc.RemoveItems(context.Background(), intruder.ID, lineID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions, got %d", deleted)
	}

	after, _ := svc.Get(context.Background(), owner.ID)
	if len(after.Items) != 1 {
		t.Fatalf("expected owner's line intact, got %d items", len(after.Items))
	}
}
