package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsertNullsEmptyNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO users .* ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs("kp_1", "ada@example.com", "Ada", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Upsert(context.Background(), User{ID: "kp_1", Email: "ada@example.com", GivenName: "Ada"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("kp_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "given_name", "family_name", "picture_url", "created_at", "updated_at"}).
			AddRow("kp_1", "ada@example.com", "Ada", nil, nil, now, now))

	user, err := repo.GetByID(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.GivenName != "Ada" || user.FamilyName != "" {
		t.Fatalf("unexpected user %+v", user)
	}

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
