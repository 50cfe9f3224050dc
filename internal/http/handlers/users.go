package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelorders/internal/repositories"
)

type UserHandler struct {
	Users repositories.UserRepository
}

// GET /api/users (admin scope)
func (h UserHandler) List(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// GET /api/users/:id (admin scope)
func (h UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "could not load user")
		return
	}
	c.JSON(http.StatusOK, user)
}
