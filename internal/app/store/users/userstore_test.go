package userstore_test

import (
	"errors"
	"strings"
	"testing"

	userstore "github.com/dalemusser/sasquatch/internal/app/store/users"
	"github.com/dalemusser/sasquatch/internal/app/system/indexes"
	"github.com/dalemusser/sasquatch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

func newStore(t *testing.T) (*userstore.Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return userstore.New(db).WithCost(bcrypt.MinCost), db
}

func TestStore_Create(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "  New.User@Example.COM ", "s3cret")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "new.user@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
	if created.PasswordHash == "" || created.PasswordHash == "s3cret" {
		t.Error("expected password to be hashed")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if !userstore.CheckPassword(created, "s3cret") {
		t.Error("CheckPassword should accept the original password")
	}
	if userstore.CheckPassword(created, "wrong") {
		t.Error("CheckPassword should reject a different password")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "dup@example.com", "one"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, "DUP@example.com", "two")
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Create_Validation(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "not-an-email", "pw"); !errors.Is(err, userstore.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := store.Create(ctx, "ok@example.com", ""); !errors.Is(err, userstore.ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
	if _, err := store.Create(ctx, "ok@example.com", strings.Repeat("é", 72)); !errors.Is(err, userstore.ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"empty", "", userstore.ErrEmptyPassword},
		{"short", "hunter2", nil},
		{"72 ascii bytes", strings.Repeat("a", 72), nil},
		{"73 ascii bytes", strings.Repeat("a", 73), userstore.ErrPasswordTooLong},
		{"36 two-byte runes", strings.Repeat("é", 36), nil},
		{"72 two-byte runes", strings.Repeat("é", 72), userstore.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := userstore.ValidatePassword(tt.password); !errors.Is(err, tt.want) {
				t.Errorf("ValidatePassword: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_GetByEmail(t *testing.T) {
	store, db := newStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	want := fixtures.CreateUser(ctx, "lookup@example.com", "pw")

	got, err := store.GetByEmail(ctx, "LOOKUP@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("GetByEmail: got ID %s, want %s", got.ID.Hex(), want.ID.Hex())
	}

	byID, err := store.GetByID(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Email != "lookup@example.com" {
		t.Errorf("GetByID: got email %q", byID.Email)
	}

	_, err = store.GetByEmail(ctx, "missing@example.com")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_EmailExists(t *testing.T) {
	store, db := newStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "exists@example.com", "pw")

	ok, err := store.EmailExists(ctx, "Exists@Example.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if !ok {
		t.Error("expected email to exist")
	}

	ok, err = store.EmailExists(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if ok {
		t.Error("expected email to be absent")
	}
}
