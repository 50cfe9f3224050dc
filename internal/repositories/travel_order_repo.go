package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"travelorders/internal/domain/models"
)

// ListFilters carries the optional query-string filters for the list
// endpoint. Date bounds are pre-validated YYYY-MM-DD strings.
type ListFilters struct {
	Status    string
	City      string
	State     string
	StartDate string
	EndDate   string
	Page      int
	PerPage   int
}

// ListScope is decided by the authorization policy, never by the client.
// OwnerID zero means no owner filter.
type ListScope struct {
	OwnerID        int64
	IncludeDeleted bool
}

const travelOrderColumns = `t.id, t.user_id, t.city, t.state, t.country, t.departure_date, t.return_date, t.status, t.created_at, t.updated_at, t.deleted_at`

type TravelOrderRepository struct {
	DB *sql.DB
}

func (r TravelOrderRepository) Create(ctx context.Context, order *models.TravelOrder) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO travel_orders (user_id, city, state, country, departure_date, return_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		order.UserID, order.City, order.State, order.Country,
		order.DepartureDate, order.ReturnDate, string(order.Status),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = id

	created, err := r.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	*order = created
	return nil
}

// FindByID loads a travel order together with the owner's public profile.
// includeDeleted keeps soft-deleted rows visible, mirroring an id lookup
// over historical orders.
func (r TravelOrderRepository) FindByID(ctx context.Context, id int64, includeDeleted bool) (models.TravelOrder, error) {
	query := `
		SELECT ` + travelOrderColumns + `, u.id, u.name, u.email
		FROM travel_orders t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = ?`
	if !includeDeleted {
		query += ` AND t.deleted_at IS NULL`
	}
	return r.scanOne(r.DB.QueryRowContext(ctx, query+` LIMIT 1`, id))
}

// FindByIDWithStatus resolves existence through a combined id+status
// predicate. An order in any other status is reported as absent, which is
// what the cancellation flow relies on.
func (r TravelOrderRepository) FindByIDWithStatus(ctx context.Context, id int64, status models.Status) (models.TravelOrder, error) {
	query := `
		SELECT ` + travelOrderColumns + `, u.id, u.name, u.email
		FROM travel_orders t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = ? AND t.status = ? AND t.deleted_at IS NULL
		LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id, string(status)))
}

// List applies the declarative filters plus the policy-decided scope and
// returns one page of orders with the total match count.
func (r TravelOrderRepository) List(ctx context.Context, f ListFilters, scope ListScope) ([]models.TravelOrder, int64, error) {
	where := []string{"1=1"}
	args := []any{}

	if !scope.IncludeDeleted {
		where = append(where, "t.deleted_at IS NULL")
	}
	if scope.OwnerID > 0 {
		where = append(where, "t.user_id = ?")
		args = append(args, scope.OwnerID)
	}
	if f.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, f.Status)
	}
	if f.City != "" {
		where = append(where, "t.city = ?")
		args = append(args, f.City)
	}
	if f.State != "" {
		where = append(where, "t.state = ?")
		args = append(args, f.State)
	}
	if f.StartDate != "" {
		where = append(where, "DATE(t.departure_date) >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		where = append(where, "DATE(t.return_date) <= ?")
		args = append(args, f.EndDate)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM travel_orders t WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	query := fmt.Sprintf(`
		SELECT %s, u.id, u.name
		FROM travel_orders t
		JOIN users u ON u.id = t.user_id
		WHERE %s
		ORDER BY t.id ASC
		LIMIT ? OFFSET ?`, travelOrderColumns, cond)

	rows, err := r.DB.QueryContext(ctx, query, append(args, perPage, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.TravelOrder{}
	for rows.Next() {
		var (
			o       models.TravelOrder
			status  string
			deleted sql.NullTime
			owner   models.UserProfile
		)
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.City, &o.State, &o.Country,
			&o.DepartureDate, &o.ReturnDate, &status,
			&o.CreatedAt, &o.UpdatedAt, &deleted,
			&owner.ID, &owner.Name,
		); err != nil {
			return nil, 0, err
		}
		o.Status = models.Status(status)
		if deleted.Valid {
			t := deleted.Time
			o.DeletedAt = &t
		}
		o.User = &owner
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// UpdateStatus moves a Requested order to the given status. The Requested
// precondition sits in the WHERE clause so two concurrent assessments
// cannot both win; the second sees zero affected rows.
func (r TravelOrderRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE travel_orders
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		string(status), id, string(models.StatusRequested),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SoftDelete cancels an Approved order: marks deleted_at and flips the
// status in the same conditional statement. Zero affected rows means the
// order raced out of the Approved state.
func (r TravelOrderRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE travel_orders
		SET status = ?, deleted_at = NOW(), updated_at = NOW()
		WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		string(models.StatusCancelled), id, string(models.StatusApproved),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r TravelOrderRepository) scanOne(row *sql.Row) (models.TravelOrder, error) {
	var (
		o       models.TravelOrder
		status  string
		deleted sql.NullTime
		owner   models.UserProfile
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.City, &o.State, &o.Country,
		&o.DepartureDate, &o.ReturnDate, &status,
		&o.CreatedAt, &o.UpdatedAt, &deleted,
		&owner.ID, &owner.Name, &owner.Email,
	)
	if err != nil {
		return models.TravelOrder{}, err
	}
	o.Status = models.Status(status)
	if deleted.Valid {
		t := deleted.Time
		o.DeletedAt = &t
	}
	o.User = &owner
	return o, nil
}
