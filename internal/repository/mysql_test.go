package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
)

func TestIsDuplicateEntryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"wrapped duplicate", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), true},
		{"other mysql error", &mysql.MySQLError{Number: 1045}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateEntryError(tt.err); got != tt.want {
				t.Errorf("isDuplicateEntryError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMySQLMalformedIDs(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(nil)
	posts := NewPostRepository(nil)

	if _, err := users.GetByID(ctx, "42"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID: expected ErrUserNotFound, got %v", err)
	}
	if _, err := posts.Get(ctx, "42"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Get: expected ErrPostNotFound, got %v", err)
	}
	if _, err := posts.Update(ctx, "42", model.PostUpdate{}); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Update: expected ErrPostNotFound, got %v", err)
	}
	if err := posts.Delete(ctx, "42"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Delete: expected ErrPostNotFound, got %v", err)
	}
	if _, err := posts.PushComment(ctx, "42", &model.Comment{}); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("PushComment: expected ErrPostNotFound, got %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) != 6 {
		t.Errorf("expected 6 migration files, got %d", len(entries))
	}
}
