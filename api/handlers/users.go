package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tracing"
)

type registerUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterUser adds a user to the shared registry. Users are bound to a
// tenant later, either as owners at provisioning or by invitation.
func RegisterUser(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RegisterUser", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var req registerUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		user := &models.User{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Active:    true,
		}
		if err := users.Create(ctx, user); err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func GetUser(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetUser", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		user, err := users.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, span, err)
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
