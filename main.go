package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/config"
	"github.com/workstackhq/workstack/internal/cron"
	"github.com/workstackhq/workstack/internal/database"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/server"
	"github.com/workstackhq/workstack/services"
	"github.com/workstackhq/workstack/services/events"
	"github.com/workstackhq/workstack/services/tenant"
)

func main() {
	app := &cli.App{
		Name:  "workstack",
		Usage: "multi-tenant workspace backend",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "start the application server",
				Action: runServer,
			},
			{
				Name:   "migrate",
				Usage:  "run public schema migrations",
				Action: runMigrate,
			},
			{
				Name:   "events-listener",
				Usage:  "consume tenant lifecycle events",
				Action: runEventsListener,
			},
			{
				Name:  "tenant",
				Usage: "tenant lifecycle operations",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "provision a new tenant",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "slug", Required: true},
							&cli.StringFlag{Name: "owner-email", Required: true},
							&cli.StringFlag{Name: "description"},
						},
						Action: runTenantCreate,
					},
					{
						Name:      "deactivate",
						Usage:     "deactivate a tenant by id",
						ArgsUsage: "<tenant-id>",
						Action:    runTenantDeactivate,
					},
					{
						Name:      "reactivate",
						Usage:     "reactivate a tenant by id",
						ArgsUsage: "<tenant-id>",
						Action:    runTenantReactivate,
					},
					{
						Name:   "list",
						Usage:  "list active tenants",
						Action: runTenantList,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("config initialization failed: %w", err)
	}

	db, err := database.NewConnection(&database.DatabaseConfig{
		DBName:          cfg.DatabaseConfig.DBName,
		Host:            cfg.DatabaseConfig.Host,
		Port:            cfg.DatabaseConfig.Port,
		User:            cfg.DatabaseConfig.User,
		Password:        cfg.DatabaseConfig.Password,
		MaxConn:         cfg.DatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.DatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.DatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.DatabaseConfig.LogLevel,
		SSLMode:         cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("database initialization failed: %w", err)
	}
	return cfg, db, nil
}

func setupServices(cfg *config.Config, db *gorm.DB) (*services.Services, *repository.Repositories, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	repos := repository.InitRepositories(db)
	svcs, err := services.InitServices(cfg, db, appLogger, repos)
	if err != nil {
		return nil, nil, err
	}
	return svcs, repos, nil
}

func runServer(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Workstack starting up...")

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server startup failed: %w", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runMigrate(c *cli.Context) error {
	_, db, err := setup()
	if err != nil {
		return err
	}

	if err := repository.MigrateDB(db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

// runEventsListener consumes the tenant lifecycle queue and re-runs the
// domain audit after every transition, so registry anomalies surface right
// away instead of waiting for the next cron tick.
func runEventsListener(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	if cfg.AppConfig.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for the events listener")
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	repos := repository.InitRepositories(db)
	auditor := cron.NewCronManager(cfg, appLogger, repos)

	subscriber, err := events.NewRabbitMQSubscriber(cfg.AppConfig.RabbitMQURL, appLogger,
		func(ctx context.Context, envelope events.Envelope) error {
			appLogger.Infof("lifecycle event %s for tenant %s (%s)", envelope.Event, envelope.Slug, envelope.TenantID)
			if anomalies := auditor.RunDomainAudit(ctx); anomalies > 0 {
				appLogger.Warnf("domain audit after %s found %d anomalies", envelope.Event, anomalies)
			}
			return nil
		}, nil)
	if err != nil {
		return fmt.Errorf("events listener setup failed: %w", err)
	}
	defer subscriber.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Infof("listening on queue %s", events.QueueTenantLifecycle)
	return subscriber.Listen(ctx)
}

func runTenantCreate(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	svcs, repos, err := setupServices(cfg, db)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx := context.Background()
	ownerEmail := c.String("owner-email")

	owner, err := repos.UserRepository.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return err
	}
	if owner == nil {
		owner = &models.User{Email: ownerEmail, Active: true}
		if err := repos.UserRepository.Create(ctx, owner); err != nil {
			return err
		}
	}

	created, err := svcs.TenantService.Provision(ctx, tenantProvisionRequest(c, owner.ID.String()))
	if err != nil {
		return err
	}

	fmt.Printf("tenant %s provisioned, id %s, hostname %s\n",
		created.Slug, created.ID, svcs.TenantService.PrimaryHostname(created.Slug))
	return nil
}

func tenantProvisionRequest(c *cli.Context, ownerID string) tenant.ProvisionRequest {
	return tenant.ProvisionRequest{
		Name:        c.String("name"),
		Slug:        c.String("slug"),
		Description: c.String("description"),
		OwnerUserID: ownerID,
	}
}

func runTenantDeactivate(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	svcs, _, err := setupServices(cfg, db)
	if err != nil {
		return err
	}
	defer svcs.Close()

	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: workstack tenant deactivate <tenant-id>")
	}

	deactivated, err := svcs.TenantService.Deactivate(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("tenant %s deactivated\n", deactivated.Slug)
	return nil
}

func runTenantReactivate(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	svcs, _, err := setupServices(cfg, db)
	if err != nil {
		return err
	}
	defer svcs.Close()

	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: workstack tenant reactivate <tenant-id>")
	}

	reactivated, err := svcs.TenantService.Reactivate(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("tenant %s reactivated\n", reactivated.Slug)
	return nil
}

func runTenantList(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	svcs, _, err := setupServices(cfg, db)
	if err != nil {
		return err
	}
	defer svcs.Close()

	tenants, err := svcs.TenantService.ListActive(context.Background())
	if err != nil {
		return err
	}
	for _, t := range tenants {
		fmt.Printf("%s\t%s\t%s\n", t.ID, t.Slug, t.Name)
	}
	return nil
}
