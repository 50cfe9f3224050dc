package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"travelorders/internal/domain/models"
)

var orderColumns = []string{
	"id", "user_id", "city", "state", "country",
	"departure_date", "return_date", "status",
	"created_at", "updated_at", "deleted_at",
	"u.id", "u.name", "u.email",
}

func orderRow(id, userID int64, status string, deleted *time.Time) *sqlmock.Rows {
	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var deletedVal any
	if deleted != nil {
		deletedVal = *deleted
	}
	return sqlmock.NewRows(orderColumns).AddRow(
		id, userID, "Belo Horizonte", "Minas Gerais", "Brasil",
		ts.AddDate(0, 0, 10), ts.AddDate(0, 0, 15), status,
		ts, ts, deletedVal,
		userID, "Alice", "alice@example.com",
	)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestFindByIDExcludesDeletedByDefault(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	mock.ExpectQuery("WHERE t\\.id = \\? AND t\\.deleted_at IS NULL").
		WithArgs(int64(7)).
		WillReturnRows(orderRow(7, 1, "Requested", nil))

	order, err := repo.FindByID(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if order.Status != models.StatusRequested {
		t.Fatalf("status = %q, want Requested", order.Status)
	}
	if order.User == nil || order.User.Email != "alice@example.com" {
		t.Fatalf("owner profile not attached: %+v", order.User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByIDIncludeDeletedKeepsDeletedAt(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	deleted := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE t\\.id = \\? LIMIT 1").
		WithArgs(int64(7)).
		WillReturnRows(orderRow(7, 1, "Cancelled", &deleted))

	order, err := repo.FindByID(context.Background(), 7, true)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if order.DeletedAt == nil || !order.DeletedAt.Equal(deleted) {
		t.Fatalf("deleted_at = %v, want %v", order.DeletedAt, deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByIDWithStatusMissesOtherStatuses(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	mock.ExpectQuery("t\\.id = \\? AND t\\.status = \\? AND t\\.deleted_at IS NULL").
		WithArgs(int64(7), "Approved").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, err := repo.FindByIDWithStatus(context.Background(), 7, models.StatusApproved)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusWinsRace(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	mock.ExpectExec("UPDATE travel_orders").
		WithArgs("Approved", int64(7), "Requested").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatus(context.Background(), 7, models.StatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if !ok {
		t.Fatal("expected the conditional update to win")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusLosesRace(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	mock.ExpectExec("UPDATE travel_orders").
		WithArgs("Cancelled", int64(7), "Requested").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(context.Background(), 7, models.StatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if ok {
		t.Fatal("zero affected rows must report a lost race")
	}
}

func TestSoftDeleteOnlyApproved(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	mock.ExpectExec("UPDATE travel_orders").
		WithArgs("Cancelled", int64(7), "Approved").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SoftDelete(context.Background(), 7)
	if err != nil {
		t.Fatalf("SoftDelete error: %v", err)
	}
	if ok {
		t.Fatal("a non-Approved order must not be soft-deletable")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListOwnerScopeFiltersDeletedAndOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM travel_orders t WHERE 1=1 AND t\\.deleted_at IS NULL AND t\\.user_id = \\?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	listCols := orderColumns[:len(orderColumns)-1] // page query selects u.id, u.name only
	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("t\\.deleted_at IS NULL AND t\\.user_id = \\?").
		WithArgs(int64(1), 20, 0).
		WillReturnRows(sqlmock.NewRows(listCols).AddRow(
			7, 1, "Belo Horizonte", "Minas Gerais", "Brasil",
			ts.AddDate(0, 0, 10), ts.AddDate(0, 0, 15), "Requested",
			ts, ts, nil,
			1, "Alice",
		))

	items, total, err := repo.List(context.Background(), ListFilters{}, ListScope{OwnerID: 1})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("total = %d, len = %d, want 1/1", total, len(items))
	}
	if items[0].User == nil || items[0].User.Name != "Alice" {
		t.Fatalf("owner profile not attached: %+v", items[0].User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAdminScopeAppliesDateFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := TravelOrderRepository{DB: db}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM travel_orders t WHERE 1=1 AND t\\.status = \\? AND DATE\\(t\\.departure_date\\) >= \\? AND DATE\\(t\\.return_date\\) <= \\?").
		WithArgs("Approved", "2026-03-01", "2026-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("DATE\\(t\\.departure_date\\) >= \\?").
		WithArgs("Approved", "2026-03-01", "2026-03-31", 10, 10).
		WillReturnRows(sqlmock.NewRows(orderColumns[:len(orderColumns)-1]))

	f := ListFilters{
		Status:    "Approved",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
		Page:      2,
		PerPage:   10,
	}
	items, total, err := repo.List(context.Background(), f, ListScope{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("total = %d, len = %d, want 0/0", total, len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
