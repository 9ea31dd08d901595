package repository

import (
	"context"
	"testing"

	"github.com/adoptimizer/adoptimizer/internal/storage/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected ID to be set after insert")
	}
	if user.Role != "user" {
		t.Errorf("expected default role 'user', got %q", user.Role)
	}

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail == nil {
		t.Fatal("expected user, got nil")
	}
	if byEmail.Username != "alice" {
		t.Errorf("expected username alice, got %q", byEmail.Username)
	}
	if byEmail.PasswordHash != user.PasswordHash {
		t.Error("password hash mismatch")
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID == nil || byID.Email != "alice@example.com" {
		t.Errorf("unexpected user from GetByID: %+v", byID)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil for missing user, got %+v", user)
	}

	user, err = repo.GetByID(ctx, 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil for missing user, got %+v", user)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	dup := &models.User{Username: "bobby", Email: "bob@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("expected error for duplicate email")
	}
}
