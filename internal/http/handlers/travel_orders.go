package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"travelorders/internal/domain/models"
	"travelorders/internal/http/middleware"
	"travelorders/internal/repositories"
	"travelorders/internal/services"
)

type TravelOrderHandler struct {
	Service  *services.TravelOrderService
	Vouchers services.VoucherService
}

// GET /api/travel-orders
func (h TravelOrderHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	filters := repositories.ListFilters{
		Status: strings.TrimSpace(c.Query("status")),
		City:   strings.TrimSpace(c.Query("city")),
		State:  strings.TrimSpace(c.Query("state")),
	}

	var err error
	if filters.StartDate, err = optionalDate(c.Query("startDate")); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "startDate must be a valid date (YYYY-MM-DD)")
		return
	}
	if filters.EndDate, err = optionalDate(c.Query("endDate")); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "endDate must be a valid date (YYYY-MM-DD)")
		return
	}

	if v := c.Query("perPage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(c, http.StatusUnprocessableEntity, "perPage must be a positive integer")
			return
		}
		filters.PerPage = n
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(c, http.StatusUnprocessableEntity, "page must be a positive integer")
			return
		}
		filters.Page = n
	}

	page, err := h.Service.List(c.Request.Context(), actor, filters)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type createTravelOrderRequest struct {
	City          string `json:"city" binding:"required,min=2,max=70"`
	State         string `json:"state" binding:"required,min=2,max=50"`
	Country       string `json:"country" binding:"required,min=2,max=60"`
	DepartureDate string `json:"departure_date" binding:"required"`
	ReturnDate    string `json:"return_date" binding:"required"`
}

// POST /api/travel-orders
func (h TravelOrderHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	var req createTravelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid payload: "+err.Error())
		return
	}

	departure, err := time.ParseInLocation(time.DateOnly, req.DepartureDate, time.Local)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "departure_date must be a valid date (YYYY-MM-DD)")
		return
	}
	ret, err := time.ParseInLocation(time.DateOnly, req.ReturnDate, time.Local)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "return_date must be a valid date (YYYY-MM-DD)")
		return
	}

	order, err := h.Service.Create(c.Request.Context(), actor, services.CreateTravelOrderInput{
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		DepartureDate: departure,
		ReturnDate:    ret,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GET /api/travel-orders/:id
func (h TravelOrderHandler) Show(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.Service.Show(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/travel-orders/:id
func (h TravelOrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "status is required")
		return
	}
	status := models.Status(req.Status)
	if !models.AssessableTo(status) {
		respondError(c, http.StatusUnprocessableEntity, "status must be 'Approved' or 'Cancelled'")
		return
	}

	order, err := h.Service.UpdateStatus(c.Request.Context(), actor, id, status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DELETE /api/travel-orders/:id
func (h TravelOrderHandler) Cancel(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.Service.Cancel(c.Request.Context(), actor, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/travel-orders/:id/voucher
func (h TravelOrderHandler) Voucher(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	pdf, filename, err := h.Vouchers.Generate(c.Request.Context(), actor, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid travel order id")
		return 0, false
	}
	return id, true
}

func optionalDate(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return "", err
	}
	return v, nil
}
