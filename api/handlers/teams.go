package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/services/team"
)

type createTeamRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
}

func CreateTeam(s *team.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CreateTeam", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var req createTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		created, err := s.Create(ctx, req.Name, req.Description, req.ParentID)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func ListTeams(s *team.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListTeams", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		teams, err := s.List(ctx)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"teams": teams})
	}
}

func GetTeam(s *team.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetTeam", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		found, err := s.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, span, err)
			return
		}
		if found == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func UpdateTeam(s *team.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "UpdateTeam", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		var req updateTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		updated, err := s.Update(ctx, c.Param("id"), req.Name, req.Description)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func ArchiveTeam(s *team.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ArchiveTeam", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		if err := s.Archive(ctx, c.Param("id")); err != nil {
			respondError(c, span, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
