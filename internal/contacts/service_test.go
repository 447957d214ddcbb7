package contacts

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Contact{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Email: uuid.NewString() + "@user.test", PasswordHash: "x", FirstName: "a", LastName: "b", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func sampleInput() Input {
	return Input{City: "spb", Street: "nevsky", House: "1", Apartment: "10", Phone: "+79990000000"}
}

func TestCreateAndList(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	user := seedUser(t, db)

	created, err := svc.Create(context.Background(), user.ID, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.UserID != user.ID {
		t.Fatalf("expected owner %s, got %s", user.ID, created.UserID)
	}

	rows, err := svc.List(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != created.ID {
		t.Fatalf("unexpected list result: %+v", rows)
	}
}

func TestUpdateRejectsForeignContact(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	owner := seedUser(t, db)
	intruder := seedUser(t, db)

	created, err := svc.Create(context.Background(), owner.ID, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := sampleInput()
	input.City = "msk"
	_, err = svc.Update(context.Background(), intruder.ID, created.ID, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	var stored models.Contact
	if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.City != "spb" {
		t.Fatalf("expected city unchanged, got %s", stored.City)
	}
}

func TestRemoveIgnoresForeignAndGarbageIDs(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	owner := seedUser(t, db)
	other := seedUser(t, db)

	mine, err := svc.Create(context.Background(), owner.ID, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	theirs, err := svc.Create(context.Background(), other.ID, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw := fmt.Sprintf("%s,%s,junk", mine.ID, theirs.ID)
	deleted, err := svc.Remove(context.Background(), owner.ID, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	var count int64
	if err := db.Model(&models.Contact{}).Where("user_id = ?", other.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected other user's contact intact, got %d", count)
	}
}
