package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recipeapp/recipe-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser("alice@example.com")
	user.IsStaff = true
	user.IsSuperuser = true

	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("CreateUser did not assign an ID")
	}

	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}

	if got.Email != user.Email {
		t.Errorf("Email: got %q, want %q", got.Email, user.Email)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, user.PasswordHash)
	}
	if got.Name != "Test User" {
		t.Errorf("Name: got %q, want %q", got.Name, "Test User")
	}
	if !got.IsActive || !got.IsStaff || !got.IsSuperuser {
		t.Errorf("flags: got active=%v staff=%v super=%v", got.IsActive, got.IsStaff, got.IsSuperuser)
	}
	if got.LastLogin != nil {
		t.Errorf("LastLogin: got %v, want nil", got.LastLogin)
	}
	if !got.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, user.CreatedAt)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "dup@example.com")

	err := s.CreateUser(ctx, makeTestUser("dup@example.com"))
	if !errors.Is(err, store.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestCreateUser_IDsIncrease(t *testing.T) {
	s := newTestStore(t)

	a := mustCreateUser(t, s, "a@example.com")
	b := mustCreateUser(t, s, "b@example.com")
	if b.ID <= a.ID {
		t.Errorf("IDs not increasing: %d then %d", a.ID, b.ID)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "Bob@example.com")

	got, err := s.GetUserByEmail(ctx, "Bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID: got %d, want %d", got.ID, u.ID)
	}

	// Lookup is exact; normalization happens before the store.
	if _, err := s.GetUserByEmail(ctx, "bob@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for different local-part case, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "carol@example.com")

	login := time.Now().UTC()
	u.Name = "Carol"
	u.PasswordHash = "new-hash"
	u.LastLogin = &login
	u.Touch()

	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Carol" {
		t.Errorf("Name: got %q, want %q", got.Name, "Carol")
	}
	if got.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash: got %q", got.PasswordHash)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(login) {
		t.Errorf("LastLogin: got %v, want %v", got.LastLogin, login)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	u := makeTestUser("ghost@example.com")
	u.ID = 42
	if err := s.UpdateUser(context.Background(), u); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "dave@example.com")
	r := mustCreateRecipe(t, s, u.ID, "Soup")
	tag, _, err := s.FindOrCreateAttribute(ctx, kindTag, u.ID, "Dinner")
	if err != nil {
		t.Fatalf("FindOrCreateAttribute: %v", err)
	}

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := s.GetRecipe(ctx, r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("recipe should be gone, got %v", err)
	}
	if _, err := s.GetAttribute(ctx, kindTag, tag.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("tag should be gone, got %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
