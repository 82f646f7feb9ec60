package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/services/title"
)

type titleRequest struct {
	Name string `json:"name" binding:"required"`
}

func CreateTitle(s *title.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CreateTitle", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var req titleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		created, err := s.Create(ctx, req.Name)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func ListTitles(s *title.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListTitles", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		titles, err := s.List(ctx)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"titles": titles})
	}
}

func GetTitle(s *title.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetTitle", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		found, err := s.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, span, err)
			return
		}
		if found == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "title not found"})
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

func RenameTitle(s *title.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RenameTitle", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		var req titleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		renamed, err := s.Rename(ctx, c.Param("id"), req.Name)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, renamed)
	}
}

func ArchiveTitle(s *title.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ArchiveTitle", c.Request.Header)
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
