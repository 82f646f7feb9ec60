package team

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

func (s *Service) Create(ctx context.Context, name, description string, parentID *string) (*models.Team, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.Create")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if parentID != nil {
		parent, err := s.repos.TeamRepository.GetByID(ctx, *parentID)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		if parent == nil {
			return nil, er.ErrTeamNotFound
		}
	}

	team := &models.Team{
		Name:        name,
		Description: description,
		ParentID:    parentID,
		Active:      true,
	}
	if err := s.repos.TeamRepository.Create(ctx, team); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return team, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Team, error) {
	return s.repos.TeamRepository.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Team, error) {
	return s.repos.TeamRepository.List(ctx)
}

func (s *Service) Update(ctx context.Context, id string, name, description *string) (*models.Team, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.Update")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	team, err := s.repos.TeamRepository.GetByID(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if team == nil {
		return nil, er.ErrTeamNotFound
	}

	if name != nil {
		team.Name = *name
	}
	if description != nil {
		team.Description = *description
	}
	if err := s.repos.TeamRepository.Save(ctx, team); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return team, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.Archive")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	team, err := s.repos.TeamRepository.GetByID(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if team == nil {
		return er.ErrTeamNotFound
	}

	team.Active = false
	if err := s.repos.TeamRepository.Save(ctx, team); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
