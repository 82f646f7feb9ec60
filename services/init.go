package services

import (
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/config"
	"github.com/workstackhq/workstack/interfaces"
	"github.com/workstackhq/workstack/internal/database"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tenancy"
	"github.com/workstackhq/workstack/services/employee"
	"github.com/workstackhq/workstack/services/events"
	"github.com/workstackhq/workstack/services/storage"
	"github.com/workstackhq/workstack/services/team"
	"github.com/workstackhq/workstack/services/tenant"
	"github.com/workstackhq/workstack/services/title"
)

type Services struct {
	EventsService   *events.EventsService
	StorageService  interfaces.StorageService
	TenantService   *tenant.Service
	EmployeeService *employee.Service
	TeamService     *team.Service
	TitleService    *title.Service
	Resolver        *tenancy.Resolver
}

func InitServices(cfg *config.Config, db *gorm.DB, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	// events, optional: an empty broker URL disables lifecycle publishing
	var eventsService *events.EventsService
	var publisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		publisherConfig := &events.PublisherConfig{
			MessageTTL:          events.DefaultMessageTTL,
			MaxRetries:          events.DefaultMaxRetries,
			PublishTimeout:      events.DefaultPublishTimeout,
			ReconnectBackoff:    events.DefaultReconnectBackoff,
			MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
		}
		es, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
		if err != nil {
			return nil, err
		}
		eventsService = es
		publisher = es.Publisher
	}

	storageService := initStorage(cfg.StorageConfig)
	provisioner := database.NewSchemaProvisioner(db)

	employeeService := employee.NewService(repos, storageService, log)
	tenantService := tenant.NewService(
		db,
		repos,
		provisioner,
		employeeService,
		publisher,
		log,
		cfg.AppConfig.BaseDomain,
	)

	services := Services{
		EventsService:   eventsService,
		StorageService:  storageService,
		TenantService:   tenantService,
		EmployeeService: employeeService,
		TeamService:     team.NewService(repos, log),
		TitleService:    title.NewService(repos, log),
		Resolver:        tenancy.NewResolver(repos.TenantRepository),
	}

	return &services, nil
}

func initStorage(cfg *config.StorageConfig) interfaces.StorageService {
	if cfg.Provider == "r2" {
		return storage.NewR2StorageService(
			cfg.AccountID,
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
			cfg.Bucket,
			cfg.CDNDomain,
			cfg.PublicRead,
		)
	}
	return storage.NewS3StorageService(
		cfg.Region,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
		cfg.Bucket,
		cfg.CDNDomain,
		cfg.PublicRead,
	)
}

func (s *Services) Close() error {
	if s.EventsService != nil {
		return s.EventsService.Close()
	}
	return nil
}
