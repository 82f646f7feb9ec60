package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tenancy"
	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/services/tenant"
)

type provisionTenantRequest struct {
	Name        string         `json:"name" binding:"required"`
	Slug        string         `json:"slug" binding:"required"`
	Description string         `json:"description"`
	OwnerUserID string         `json:"ownerUserId" binding:"required"`
	Attributes  models.JSONMap `json:"attributes"`
}

// ProvisionTenant creates a tenant with its partition, primary hostname and
// owner employee record.
func ProvisionTenant(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ProvisionTenant", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var req provisionTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		created, err := s.Provision(ctx, tenant.ProvisionRequest{
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			OwnerUserID: req.OwnerUserID,
			Attributes:  req.Attributes,
		})
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func ListTenants(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListTenants", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		tenants, err := s.ListActive(ctx)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenants": tenants})
	}
}

func GetTenant(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetTenant", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		found, err := s.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, span, err)
			return
		}
		if found == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

type updateTenantRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Attributes  models.JSONMap `json:"attributes"`
}

func UpdateTenant(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "UpdateTenant", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		var req updateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		updated, err := s.Update(ctx, c.Param("id"), tenant.UpdateRequest{
			Name:        req.Name,
			Description: req.Description,
			Attributes:  req.Attributes,
		})
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeactivateTenant(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "DeactivateTenant", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		deactivated, err := s.Deactivate(ctx, c.Param("id"))
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, deactivated)
	}
}

func ReactivateTenant(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ReactivateTenant", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		reactivated, err := s.Reactivate(ctx, c.Param("id"))
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, reactivated)
	}
}

func DeleteTenant(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "DeleteTenant", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		if err := s.HardDelete(ctx, c.Param("id")); err != nil {
			respondError(c, span, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type addDomainRequest struct {
	Hostname string `json:"hostname" binding:"required"`
}

func AddTenantDomain(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "AddTenantDomain", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		var req addDomainRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		domain, err := s.AddDomain(ctx, c.Param("id"), req.Hostname)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, domain)
	}
}

func RemoveTenantDomain(s *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RemoveTenantDomain", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("domainId"))

		if err := s.RemoveDomain(ctx, c.Param("id"), c.Param("domainId")); err != nil {
			respondError(c, span, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ResolveHostname answers which tenant a hostname belongs to. Used by edge
// proxies to validate routing without hitting the workspace API.
func ResolveHostname(resolver *tenancy.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ResolveHostname", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		host := c.Query("host")
		if host == "" {
			host = c.Request.Host
		}

		resolved, err := resolver.Resolve(ctx, host)
		if err != nil {
			respondError(c, span, err)
			return
		}
		if resolved == nil {
			c.JSON(http.StatusOK, gin.H{"partition": tenancy.PublicSchema})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"partition": resolved.SchemaName(),
			"tenantId":  resolved.ID,
			"slug":      resolved.Slug,
		})
	}
}
