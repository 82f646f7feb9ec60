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

type TitleRepository interface {
	Create(ctx context.Context, title *models.Title) error
	GetByID(ctx context.Context, id string) (*models.Title, error)
	List(ctx context.Context) ([]models.Title, error)
	Save(ctx context.Context, title *models.Title) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) scoped(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return database.InSchema(ctx, r.db, tenancy.SchemaFromContext(ctx), fn)
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TitleRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagSchema(span, tenancy.SchemaFromContext(ctx))

	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Create(title).Error
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

func (r *titleRepository) GetByID(ctx context.Context, id string) (*models.Title, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TitleRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var title models.Title
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&title).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) List(ctx context.Context) ([]models.Title, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TitleRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagSchema(span, tenancy.SchemaFromContext(ctx))

	var titles []models.Title
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Order("name").Find(&titles).Error
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return titles, nil
}

func (r *titleRepository) Save(ctx context.Context, title *models.Title) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TitleRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, title.ID)

	title.UpdatedAt = utils.Now()
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Save(title).Error
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
