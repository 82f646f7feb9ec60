package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/workstackhq/workstack/internal/database"
	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/tracing"
)

// respondError maps domain errors to HTTP statuses. Unknown errors become
// 500 without leaking internals.
func respondError(c *gin.Context, span opentracing.Span, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, er.ErrTenantNotFound),
		errors.Is(err, er.ErrDomainNotFound),
		errors.Is(err, er.ErrUserNotFound),
		errors.Is(err, er.ErrEmployeeNotFound),
		errors.Is(err, er.ErrTeamNotFound),
		errors.Is(err, er.ErrTitleNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, er.ErrTenantAlreadyExists),
		errors.Is(err, er.ErrOwnerAlreadyHasTenant),
		errors.Is(err, er.ErrDomainCollision),
		errors.Is(err, er.ErrUserAlreadyExists),
		errors.Is(err, er.ErrNameTaken),
		errors.Is(err, er.ErrInconsistentLifecycleState):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, er.ErrCannotDeleteOwner),
		errors.Is(err, er.ErrEmployeeHasNoUser):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, database.ErrInvalidSchemaName):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, er.ErrStructuralProvisioningFailed):
		status = http.StatusBadGateway
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		tracing.TraceErr(span, err)
	}
	c.JSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, span opentracing.Span, err error) {
	tracing.TraceErr(span, err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
