package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/api/handlers"
	"github.com/workstackhq/workstack/api/middleware"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/services"
)

// RegisterRoutes sets up all API endpoints. The admin surface under
// /v1/admin is API-key guarded and always runs in the public partition.
// The workspace surface under /v1 is scoped by the request hostname.
func RegisterRoutes(ctx context.Context, r *gin.Engine, db *gorm.DB, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/health", handlers.HealthCheck)
	r.GET("/readiness", handlers.Readiness(db))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.DefaultAPIKeyHeader,
		ValidAPIKey: apikey,
	})

	admin := r.Group("/v1/admin")
	admin.Use(apiKeyMiddleware)
	admin.Use(middleware.UserIdMiddleware())
	admin.Use(middleware.CustomContextMiddleware("workstack-admin"))
	admin.Use(middleware.TracingMiddleware())
	{
		tenants := admin.Group("/tenants")
		{
			tenants.POST("", handlers.ProvisionTenant(s.TenantService))
			tenants.GET("", handlers.ListTenants(s.TenantService))
			tenants.GET("/:id", handlers.GetTenant(s.TenantService))
			tenants.PATCH("/:id", handlers.UpdateTenant(s.TenantService))
			tenants.DELETE("/:id", handlers.DeleteTenant(s.TenantService))
			tenants.POST("/:id/deactivate", handlers.DeactivateTenant(s.TenantService))
			tenants.POST("/:id/reactivate", handlers.ReactivateTenant(s.TenantService))
			tenants.POST("/:id/domains", handlers.AddTenantDomain(s.TenantService))
			tenants.DELETE("/:id/domains/:domainId", handlers.RemoveTenantDomain(s.TenantService))
		}

		users := admin.Group("/users")
		{
			users.POST("", handlers.RegisterUser(repos.UserRepository))
			users.GET("/:id", handlers.GetUser(repos.UserRepository))
		}

		admin.GET("/resolve", handlers.ResolveHostname(s.Resolver))
	}

	workspace := r.Group("/v1")
	workspace.Use(middleware.UserIdMiddleware())
	workspace.Use(middleware.CustomContextMiddleware("workstack"))
	workspace.Use(middleware.TracingMiddleware())
	workspace.Use(middleware.TenantResolutionMiddleware(s.Resolver))
	workspace.Use(middleware.RequireTenantMiddleware())
	{
		employees := workspace.Group("/employees")
		{
			employees.GET("", handlers.ListEmployees(s.EmployeeService))
			employees.POST("", handlers.CreateEmployee(s.EmployeeService))
			employees.GET("/:id", handlers.GetEmployee(s.EmployeeService))
			employees.PUT("/:id", handlers.UpdateEmployee(s.EmployeeService))
			employees.DELETE("/:id", handlers.TerminateEmployee(s.EmployeeService))
			employees.POST("/:id/photo", handlers.UploadEmployeePhoto(s.EmployeeService))
		}

		teams := workspace.Group("/teams")
		{
			teams.GET("", handlers.ListTeams(s.TeamService))
			teams.POST("", handlers.CreateTeam(s.TeamService))
			teams.GET("/:id", handlers.GetTeam(s.TeamService))
			teams.PUT("/:id", handlers.UpdateTeam(s.TeamService))
			teams.DELETE("/:id", handlers.ArchiveTeam(s.TeamService))
		}

		titles := workspace.Group("/titles")
		{
			titles.GET("", handlers.ListTitles(s.TitleService))
			titles.POST("", handlers.CreateTitle(s.TitleService))
			titles.GET("/:id", handlers.GetTitle(s.TitleService))
			titles.PUT("/:id", handlers.RenameTitle(s.TitleService))
			titles.DELETE("/:id", handlers.ArchiveTitle(s.TitleService))
		}
	}
}
