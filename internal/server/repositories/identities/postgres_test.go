package identities

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ = `(?s)^INSERT\s+INTO\s+identities\s*\(id,\s*user_id,\s*provider,\s*subject,\s*email\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`
	selectQ = `(?s)^SELECT\s+id,\s*user_id,\s*provider,\s*subject,\s*email,\s*created_at\s+FROM\s+identities\s+WHERE\s+provider\s*=\s*\$1\s+AND\s+subject\s*=\s*\$2\s*$`
	listQ   = `(?s)^SELECT\s+id,\s*user_id,\s*provider,\s*subject,\s*email,\s*created_at\s+FROM\s+identities\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s*$`
	deleteQ = `(?s)^DELETE\s+FROM\s+identities\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+provider\s*=\s*\$2$`
)

var cols = []string{"id", "user_id", "provider", "subject", "email", "created_at"}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs(sqlmock.AnyArg(), "u-1", "google", "sub-1", "a@b.c").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	got, err := repo.Create(context.Background(), &models.Identity{UserID: "u-1", Provider: "google", Subject: "sub-1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	mock.ExpectQuery(insertQ).
		WithArgs(sqlmock.AnyArg(), "u-2", "google", "sub-1", "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), &models.Identity{UserID: "u-2", Provider: "google", Subject: "sub-1"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestGetByProviderSubject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).WithArgs("facebook", "42").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("i-1", "u-1", "facebook", "42", "", time.Now()))

	got, err := repo.GetByProviderSubject(context.Background(), "facebook", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u-1" {
		t.Fatalf("unexpected identity: %+v", got)
	}

	mock.ExpectQuery(selectQ).WithArgs("facebook", "43").WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetByProviderSubject(context.Background(), "facebook", "43"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("i-1", "u-1", "password", "a@b.c", "a@b.c", time.Now()).
			AddRow("i-2", "u-1", "google", "sub", "a@b.c", time.Now()))

	got, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 2 || got[1].Provider != "google" {
		t.Fatalf("unexpected identities: %+v", got)
	}

	mock.ExpectQuery(listQ).WithArgs("u-2").WillReturnError(errors.New("db err"))
	if _, err := repo.ListByUser(context.Background(), "u-2"); err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("u-1", "google").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(context.Background(), "u-1", "google"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	mock.ExpectExec(deleteQ).WithArgs("u-1", "twitter").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), "u-1", "twitter"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
