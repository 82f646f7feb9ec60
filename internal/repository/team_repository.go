package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/database"
	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tenancy"
	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/internal/utils"
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Save(ctx context.Context, team *models.Team) error
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) scoped(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return database.InSchema(ctx, r.db, tenancy.SchemaFromContext(ctx), fn)
}

func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagSchema(span, tenancy.SchemaFromContext(ctx))

	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Create(team).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return er.ErrNameTaken
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var team models.Team
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&team).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context) ([]models.Team, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagSchema(span, tenancy.SchemaFromContext(ctx))

	var teams []models.Team
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Order("name").Find(&teams).Error
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) Save(ctx context.Context, team *models.Team) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, team.ID)

	team.UpdatedAt = utils.Now()
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Save(team).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return er.ErrNameTaken
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
