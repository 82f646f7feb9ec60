package title

import (
	"context"

	"github.com/opentracing/opentracing-go"

	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tracing"
)

type Service struct {
	repos *repository.Repositories
	log   logger.Logger
}

func NewService(repos *repository.Repositories, log logger.Logger) *Service {
	return &Service{repos: repos, log: log}
}

func (s *Service) Create(ctx context.Context, name string) (*models.Title, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TitleService.Create")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	title := &models.Title{Name: name, Active: true}
	if err := s.repos.TitleRepository.Create(ctx, title); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return title, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Title, error) {
	return s.repos.TitleRepository.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Title, error) {
	return s.repos.TitleRepository.List(ctx)
}

func (s *Service) Rename(ctx context.Context, id, name string) (*models.Title, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TitleService.Rename")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	title, err := s.repos.TitleRepository.GetByID(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if title == nil {
		return nil, er.ErrTitleNotFound
	}

	title.Name = name
	if err := s.repos.TitleRepository.Save(ctx, title); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return title, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TitleService.Archive")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	title, err := s.repos.TitleRepository.GetByID(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if title == nil {
		return er.ErrTitleNotFound
	}

	title.Active = false
	if err := s.repos.TitleRepository.Save(ctx, title); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
