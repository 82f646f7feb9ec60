package employee

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/interfaces"
	"github.com/workstackhq/workstack/internal/enum"
	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/internal/utils"
	"github.com/workstackhq/workstack/services/storage"
)

// Service manages employee records inside the current tenant partition.
// All reads and writes go through the execution context on the passed
// context; there is no tenant parameter anywhere.
type Service struct {
	repos   *repository.Repositories
	storage interfaces.StorageService
	log     logger.Logger
}

func NewService(repos *repository.Repositories, store interfaces.StorageService, log logger.Logger) *Service {
	return &Service{repos: repos, storage: store, log: log}
}

// CreateOwnerRecord satisfies interfaces.OwnerRecordCreator. It runs inside
// the provisioning transaction, already scoped to the new partition.
func (s *Service) CreateOwnerRecord(ctx context.Context, tx *gorm.DB, owner *models.User) (*models.Employee, error) {
	employee := &models.Employee{
		UserID:         owner.ID.String(),
		FirstName:      utils.FirstNotEmpty(owner.FirstName, "Owner"),
		LastName:       owner.LastName,
		Role:           enum.EmployeeRoleOwner,
		EmploymentDate: utils.NowPtr(),
		Active:         true,
	}
	if err := s.repos.EmployeeRepository.WithTx(tx).Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

type CreateRequest struct {
	UserID               string
	FirstName            string
	LastName             string
	Role                 enum.EmployeeRole
	ManagerID            *string
	EmploymentDate       *time.Time
	ContractType         enum.ContractType
	ContractEndDate      *time.Time
	IdentificationNumber string
	PhoneNumber          string
	BusinessPhoneNumber  string
	Attributes           models.JSONMap
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Employee, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeService.Create")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	user, err := s.repos.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if user == nil {
		return nil, er.ErrUserNotFound
	}

	role := req.Role
	if role == "" {
		role = enum.EmployeeRoleEmployee
	}
	// There is exactly one owner per tenant, created at provisioning.
	if role == enum.EmployeeRoleOwner {
		role = enum.EmployeeRoleEmployee
	}
	contract := req.ContractType
	if contract == "" {
		contract = enum.ContractIndefinite
	}

	employee := &models.Employee{
		UserID:               req.UserID,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Role:                 role,
		ManagerID:            req.ManagerID,
		EmploymentDate:       req.EmploymentDate,
		ContractType:         contract,
		ContractEndDate:      req.ContractEndDate,
		IdentificationNumber: req.IdentificationNumber,
		PhoneNumber:          req.PhoneNumber,
		BusinessPhoneNumber:  req.BusinessPhoneNumber,
		Active:               true,
		Attributes:           req.Attributes,
	}
	if err := s.repos.EmployeeRepository.Create(ctx, employee); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return employee, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	return s.repos.EmployeeRepository.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Employee, error) {
	return s.repos.EmployeeRepository.List(ctx)
}

type UpdateRequest struct {
	FirstName            *string
	LastName             *string
	Role                 *enum.EmployeeRole
	ManagerID            *string
	EmploymentDate       *time.Time
	TerminationDate      *time.Time
	ContractType         *enum.ContractType
	ContractEndDate      *time.Time
	IdentificationNumber *string
	PhoneNumber          *string
	BusinessPhoneNumber  *string
	Attributes           models.JSONMap
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*models.Employee, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeService.Update")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	employee, err := s.requireEmployee(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if req.FirstName != nil {
		employee.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		employee.LastName = *req.LastName
	}
	if req.Role != nil && employee.Role != enum.EmployeeRoleOwner && *req.Role != enum.EmployeeRoleOwner {
		employee.Role = *req.Role
	}
	if req.ManagerID != nil {
		employee.ManagerID = req.ManagerID
	}
	if req.EmploymentDate != nil {
		employee.EmploymentDate = req.EmploymentDate
	}
	if req.TerminationDate != nil {
		employee.TerminationDate = req.TerminationDate
	}
	if req.ContractType != nil {
		employee.ContractType = *req.ContractType
	}
	if req.ContractEndDate != nil {
		employee.ContractEndDate = req.ContractEndDate
	}
	if req.IdentificationNumber != nil {
		employee.IdentificationNumber = *req.IdentificationNumber
	}
	if req.PhoneNumber != nil {
		employee.PhoneNumber = *req.PhoneNumber
	}
	if req.BusinessPhoneNumber != nil {
		employee.BusinessPhoneNumber = *req.BusinessPhoneNumber
	}
	if req.Attributes != nil {
		employee.Attributes = req.Attributes
	}

	if err := s.repos.EmployeeRepository.Save(ctx, employee); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return employee, nil
}

// Terminate deactivates the employee and records the termination date. The
// owner record cannot be terminated.
func (s *Service) Terminate(ctx context.Context, id string, terminationDate *time.Time) (*models.Employee, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeService.Terminate")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	employee, err := s.requireEmployee(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if employee.Role == enum.EmployeeRoleOwner {
		return nil, er.ErrCannotDeleteOwner
	}

	employee.Active = false
	if terminationDate != nil {
		employee.TerminationDate = terminationDate
	} else {
		employee.TerminationDate = utils.NowPtr()
	}

	if err := s.repos.EmployeeRepository.Save(ctx, employee); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return employee, nil
}

// UploadPhoto stores the profile photo under the tenant's storage prefix
// and records the object key on the employee.
func (s *Service) UploadPhoto(ctx context.Context, id string, data []byte, contentType, filename string) (*models.Employee, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmployeeService.UploadPhoto")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	employee, err := s.requireEmployee(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	ext := path.Ext(filename)
	key, err := storage.ResolveStoragePath(ctx, fmt.Sprintf("photos/%s%s", employee.ID, ext))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "photo upload failed"))
		return nil, err
	}

	old := employee.PhotoKey
	employee.PhotoKey = key
	if err := s.repos.EmployeeRepository.Save(ctx, employee); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if old != "" && old != key {
		if err := s.storage.Delete(ctx, old); err != nil {
			s.log.Warnf("failed to delete previous photo %s: %v", old, err)
		}
	}
	return employee, nil
}

func (s *Service) PhotoURL(employee *models.Employee) string {
	if employee.PhotoKey == "" {
		return ""
	}
	return s.storage.GetPublicURL(employee.PhotoKey)
}

func (s *Service) requireEmployee(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repos.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, er.ErrEmployeeNotFound
	}
	return employee, nil
}
