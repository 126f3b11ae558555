package cv

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func testRecord() UserCV {
	return UserCV{
		ID:         "cv-1",
		OwnerID:    "user-1",
		FilePath:   "http://localhost:9000/cv-bucket/users/user-1/cv/main.pdf",
		IsMain:     true,
		FileName:   "resume.pdf",
		UploadedAt: time.Now().UTC(),
	}
}

func TestPGRepoReplaceDeletesSlotThenInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rec := testRecord()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cv WHERE user_id").
		WithArgs(rec.OwnerID, rec.IsMain).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO cv").
		WithArgs(rec.ID, rec.OwnerID, rec.FilePath, rec.IsMain, rec.FileName, rec.UploadedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Replace(context.Background(), rec); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rec := testRecord()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cv WHERE user_id").
		WithArgs(rec.OwnerID, rec.IsMain).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO cv").
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	if err := repo.Replace(context.Background(), rec); err == nil {
		t.Fatal("expected insert failure to propagate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByOwnerAndSlotMapsNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, user_id, file_path, is_main, file_name, uploaded_at FROM cv WHERE user_id").
		WithArgs("user-1", true).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByOwnerAndSlot(context.Background(), "user-1", true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteMissingRowNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("DELETE FROM cv WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByOwnerOrdersMainFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "file_path", "is_main", "file_name", "uploaded_at"}).
		AddRow("cv-1", "user-1", "path-main", true, "main.pdf", now).
		AddRow("cv-2", "user-1", "path-other", false, "other.pdf", now)

	mock.ExpectQuery("ORDER BY is_main DESC, uploaded_at DESC").
		WithArgs("user-1").
		WillReturnRows(rows)

	out, err := repo.ListByOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if !out[0].IsMain {
		t.Fatal("expected main record first")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
