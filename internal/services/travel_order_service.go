package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"travelorders/internal/domain"
	"travelorders/internal/domain/models"
	"travelorders/internal/notify"
	"travelorders/internal/policy"
	"travelorders/internal/repositories"
)

// TravelOrderStore is the persistence port of the service. The MySQL
// implementation lives in internal/repositories.
type TravelOrderStore interface {
	Create(ctx context.Context, order *models.TravelOrder) error
	FindByID(ctx context.Context, id int64, includeDeleted bool) (models.TravelOrder, error)
	FindByIDWithStatus(ctx context.Context, id int64, status models.Status) (models.TravelOrder, error)
	List(ctx context.Context, f repositories.ListFilters, scope repositories.ListScope) ([]models.TravelOrder, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
}

// Notifier receives lifecycle events after a successful commit. The
// service never blocks on it and never fails a request over it.
type Notifier interface {
	Publish(ctx context.Context, ev notify.Event) error
}

type TravelOrderService struct {
	Orders   TravelOrderStore
	Users    UserStore
	Notifier Notifier
	Log      *zap.Logger
	Now      func() time.Time
}

func (s *TravelOrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AppliedFilters echoes the filters a page was built with so the caller
// can reconstruct pagination links.
type AppliedFilters struct {
	Status    string `json:"status,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type Page struct {
	Items       []models.TravelOrder `json:"data"`
	CurrentPage int                  `json:"current_page"`
	PerPage     int                  `json:"per_page"`
	Total       int64                `json:"total"`
	LastPage    int                  `json:"last_page"`
	Filters     AppliedFilters       `json:"filters"`
}

// List returns one page of travel orders. The actor's scopes decide the
// shape: user-permission narrows to the actor's own orders, while
// admin-permission lifts the owner filter and brings soft-deleted rows
// into the filterable set.
func (s *TravelOrderService) List(ctx context.Context, actor models.Actor, f repositories.ListFilters) (Page, error) {
	if !policy.CanList(actor) {
		return Page{}, domain.PermissionDeniedError{Msg: "you do not have permission to list travel orders"}
	}

	scope := repositories.ListScope{}
	if actor.HasScope(models.ScopeUser) {
		scope.OwnerID = actor.ID
	}
	if actor.HasScope(models.ScopeAdmin) {
		scope.IncludeDeleted = true
	}

	if f.PerPage <= 0 {
		f.PerPage = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	items, total, err := s.Orders.List(ctx, f, scope)
	if err != nil {
		return Page{}, domain.InternalError{Msg: "could not list travel orders", Err: err}
	}

	lastPage := int((total + int64(f.PerPage) - 1) / int64(f.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return Page{
		Items:       items,
		CurrentPage: f.Page,
		PerPage:     f.PerPage,
		Total:       total,
		LastPage:    lastPage,
		Filters: AppliedFilters{
			Status:    f.Status,
			City:      f.City,
			State:     f.State,
			StartDate: f.StartDate,
			EndDate:   f.EndDate,
		},
	}, nil
}

type CreateTravelOrderInput struct {
	City          string
	State         string
	Country       string
	DepartureDate time.Time
	ReturnDate    time.Time
}

// Create opens a new travel order for the actor. The requester is always
// the authenticated actor; any owner id in the payload is ignored
// upstream so it can never be spoofed.
func (s *TravelOrderService) Create(ctx context.Context, actor models.Actor, in CreateTravelOrderInput) (models.TravelOrder, error) {
	if !policy.CanCreate(actor) {
		return models.TravelOrder{}, domain.PermissionDeniedError{Msg: "you do not have permission to create travel orders"}
	}

	order, err := models.NewTravelOrder(actor.ID, in.City, in.State, in.Country, in.DepartureDate, in.ReturnDate, s.now())
	if err != nil {
		return models.TravelOrder{}, err
	}

	if err := s.Orders.Create(ctx, &order); err != nil {
		return models.TravelOrder{}, domain.InternalError{Msg: "could not create travel order", Err: err}
	}
	return order, nil
}

// Show loads a single order, soft-deleted ones included, with the owner's
// public profile embedded. Existence is confirmed before authorization,
// so a foreign id yields 404 and a foreign order yields 403.
func (s *TravelOrderService) Show(ctx context.Context, actor models.Actor, id int64) (models.TravelOrder, error) {
	order, err := s.Orders.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TravelOrder{}, domain.NotFoundError{Resource: "travel order"}
		}
		return models.TravelOrder{}, domain.InternalError{Msg: "could not load travel order", Err: err}
	}

	if !policy.CanView(actor, order) {
		return models.TravelOrder{}, domain.PermissionDeniedError{Msg: "you do not have permission to view this travel order"}
	}
	return order, nil
}

// UpdateStatus assesses a Requested order: Approved or Cancelled, by an
// admin who is not the requester. The Requested precondition is
// re-validated at write time through a conditional update, so a lost race
// surfaces as AlreadyAssessed rather than a silent overwrite.
func (s *TravelOrderService) UpdateStatus(ctx context.Context, actor models.Actor, id int64, newStatus models.Status) (models.TravelOrder, error) {
	if !models.AssessableTo(newStatus) {
		return models.TravelOrder{}, domain.ValidationError{Field: "status", Msg: "must be 'Approved' or 'Cancelled'"}
	}

	order, err := s.Orders.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TravelOrder{}, domain.NotFoundError{Resource: "travel order"}
		}
		return models.TravelOrder{}, domain.InternalError{Msg: "could not load travel order", Err: err}
	}

	if !policy.CanAssess(actor, order) {
		return models.TravelOrder{}, domain.PermissionDeniedError{Msg: "you do not have permission to change the status of this travel order"}
	}
	if order.Status.Assessed() {
		return models.TravelOrder{}, domain.AlreadyAssessedError{}
	}

	ok, err := s.Orders.UpdateStatus(ctx, order.ID, newStatus)
	if err != nil {
		return models.TravelOrder{}, domain.InternalError{Msg: "could not update travel order", Err: err}
	}
	if !ok {
		return models.TravelOrder{}, domain.AlreadyAssessedError{}
	}

	order.Status = newStatus
	order.UpdatedAt = s.now()

	kind := notify.KindApproved
	if newStatus == models.StatusCancelled {
		kind = notify.KindDisapproved
	}
	s.emit(ctx, kind, order)

	return order, nil
}

// Cancel soft-deletes an Approved order on behalf of its owner. Existence
// is resolved through an id+status predicate: an order in Requested or
// Cancelled state is reported as not found, never as a permission
// problem, regardless of who asks.
func (s *TravelOrderService) Cancel(ctx context.Context, actor models.Actor, id int64) error {
	order, err := s.Orders.FindByIDWithStatus(ctx, id, models.StatusApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "travel order"}
		}
		return domain.InternalError{Msg: "could not load travel order", Err: err}
	}

	if !policy.CanCancel(actor, order) {
		return domain.PermissionDeniedError{Msg: "you do not have permission to cancel this travel order"}
	}

	ok, err := s.Orders.SoftDelete(ctx, order.ID)
	if err != nil || !ok {
		return domain.InternalError{Msg: "could not cancel the travel order, try again later", Err: err}
	}

	order.Status = models.StatusCancelled
	now := s.now()
	order.DeletedAt = &now
	order.UpdatedAt = now
	s.emit(ctx, notify.KindDisapproved, order)

	return nil
}

// emit publishes a lifecycle event with the owner profile attached.
// Fire-and-forget: a notification failure is logged and swallowed, it
// never fails the request that already committed.
func (s *TravelOrderService) emit(ctx context.Context, kind notify.Kind, order models.TravelOrder) {
	profile := models.UserProfile{ID: order.UserID}
	if order.User != nil {
		profile = *order.User
	}
	if profile.Email == "" {
		if owner, err := s.Users.FindByID(ctx, order.UserID); err == nil {
			profile = owner.Profile()
		}
	}

	ev := notify.Event{Kind: kind, Order: order, User: profile}
	if err := s.Notifier.Publish(ctx, ev); err != nil {
		s.Log.Warn("failed to publish travel order event",
			zap.Int64("order_id", order.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
