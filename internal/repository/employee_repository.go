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

// EmployeeRepository reads the execution context on every call to pick the
// tenant schema, so it stays correct even if the context changes between
// calls within one unit of work.
type EmployeeRepository interface {
	WithTx(tx *gorm.DB) EmployeeRepository
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	GetByUserID(ctx context.Context, userID string) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	Save(ctx context.Context, employee *models.Employee) error
}

type employeeRepository struct {
	db    *gorm.DB
	bound bool
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// WithTx binds the repository to an already-scoped transaction. The caller
// owns the search_path of that transaction.
func (r *employeeRepository) WithTx(tx *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: tx, bound: true}
}

func (r *employeeRepository) scoped(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.bound {
		return fn(r.db.WithContext(ctx))
	}
	return database.InSchema(ctx, r.db, tenancy.SchemaFromContext(ctx), fn)
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagSchema(span, tenancy.SchemaFromContext(ctx))

	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Create(employee).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return er.ErrUserAlreadyExists
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var employee models.Employee
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&employee).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeRepository.GetByUserID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var employee models.Employee
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).First(&employee).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagSchema(span, tenancy.SchemaFromContext(ctx))

	var employees []models.Employee
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Order("created_at").Find(&employees).Error
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepository) Save(ctx context.Context, employee *models.Employee) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, employee.ID)

	employee.UpdatedAt = utils.Now()
	err := r.scoped(ctx, func(tx *gorm.DB) error {
		return tx.Save(employee).Error
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
