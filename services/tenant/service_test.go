package tenant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/workstackhq/workstack/interfaces"
	"github.com/workstackhq/workstack/internal/database"
	"github.com/workstackhq/workstack/internal/enum"
	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tenancy"
	"github.com/workstackhq/workstack/services/employee"
)

type stubProvisioner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubProvisioner) ApplyStructure(ctx context.Context, schema string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, schema)
	return s.err
}

type stubPublisher struct {
	mu     sync.Mutex
	events []interfaces.TenantEvent
	err    error
}

func (s *stubPublisher) PublishTenantEvent(ctx context.Context, event interfaces.TenantEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *stubPublisher) Close() error { return nil }

type stubStorage struct{}

func (stubStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}
func (stubStorage) Download(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (stubStorage) Delete(ctx context.Context, key string) error             { return nil }
func (stubStorage) GetPublicURL(key string) string                           { return "" }

type fixture struct {
	svc         *Service
	db          *gorm.DB
	repos       *repository.Repositories
	provisioner *stubProvisioner
	publisher   *stubPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PublicModels()...))
	require.NoError(t, db.AutoMigrate(database.TenantModels()...))

	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()

	repos := repository.InitRepositories(db)
	provisioner := &stubProvisioner{}
	publisher := &stubPublisher{}
	employees := employee.NewService(repos, stubStorage{}, appLogger)

	svc := NewService(db, repos, provisioner, employees, publisher, appLogger, "workstack.app")

	return &fixture{
		svc:         svc,
		db:          db,
		repos:       repos,
		provisioner: provisioner,
		publisher:   publisher,
	}
}

func (f *fixture) createOwner(t *testing.T, email string) *models.User {
	t.Helper()
	owner := &models.User{Email: email, FirstName: "Ada", LastName: "Lovelace", Active: true}
	require.NoError(t, f.repos.UserRepository.Create(context.Background(), owner))
	return owner
}

func (f *fixture) provision(t *testing.T, slug, ownerEmail string) *models.Tenant {
	t.Helper()
	owner := f.createOwner(t, ownerEmail)
	created, err := f.svc.Provision(context.Background(), ProvisionRequest{
		Name:        strings.ToUpper(slug),
		Slug:        slug,
		OwnerUserID: owner.ID.String(),
	})
	require.NoError(t, err)
	return created
}

func TestProvision_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createOwner(t, "ada@acme.com")

	created, err := f.svc.Provision(ctx, ProvisionRequest{
		Name:        "Acme Corp",
		Slug:        "acme",
		OwnerUserID: owner.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.Equal(t, "acme", created.Slug)
	assert.Equal(t, []string{"acme"}, f.provisioner.calls)

	// Primary hostname is assigned from the slug.
	primary, err := f.repos.DomainRepository.GetPrimary(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Equal(t, "acme.workstack.app", primary.Hostname)
	assert.False(t, primary.Parked())

	// Owner is bound as tenant admin.
	boundOwner, err := f.repos.UserRepository.GetByID(ctx, owner.ID.String())
	require.NoError(t, err)
	require.NotNil(t, boundOwner.TenantID)
	assert.Equal(t, created.ID, *boundOwner.TenantID)
	assert.True(t, boundOwner.IsAdmin)

	// The owner employee record exists inside the new partition.
	tenantScope := tenancy.WithTenant(ctx, created)
	record, err := f.repos.EmployeeRepository.GetByUserID(tenantScope, owner.ID.String())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, enum.EmployeeRoleOwner, record.Role)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventTenantProvisioned, f.publisher.events[0].Event)
	assert.Equal(t, "acme.workstack.app", f.publisher.events[0].Hostname)
}

func TestProvision_RejectsInvalidSlug(t *testing.T) {
	f := newFixture(t)
	owner := f.createOwner(t, "ada@acme.com")

	for _, slug := range []string{"public", "Bad Slug", "9starts-with-digit", ""} {
		_, err := f.svc.Provision(context.Background(), ProvisionRequest{
			Name:        "Acme",
			Slug:        slug,
			OwnerUserID: owner.ID.String(),
		})
		assert.ErrorIs(t, err, database.ErrInvalidSchemaName, "slug %q", slug)
	}
	assert.Empty(t, f.provisioner.calls)
}

func TestProvision_DuplicateSlug(t *testing.T) {
	f := newFixture(t)
	f.provision(t, "acme", "ada@acme.com")

	other := f.createOwner(t, "grace@other.com")
	_, err := f.svc.Provision(context.Background(), ProvisionRequest{
		Name:        "Acme Again",
		Slug:        "acme",
		OwnerUserID: other.ID.String(),
	})
	assert.ErrorIs(t, err, er.ErrTenantAlreadyExists)
}

func TestProvision_ConcurrentSameSlug(t *testing.T) {
	f := newFixture(t)

	// A single pooled connection keeps both goroutines on the same in-memory
	// database and serializes their transactions, the way a shared postgres
	// would.
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ownerA := f.createOwner(t, "ada@acme.com")
	ownerB := f.createOwner(t, "grace@acme.com")

	results := make(chan error, 2)
	for _, owner := range []*models.User{ownerA, ownerB} {
		owner := owner
		go func() {
			_, err := f.svc.Provision(context.Background(), ProvisionRequest{
				Name:        "Acme",
				Slug:        "acme",
				OwnerUserID: owner.ID.String(),
			})
			results <- err
		}()
	}

	var successes, duplicates int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			successes++
		case errors.Is(err, er.ErrTenantAlreadyExists):
			duplicates++
		default:
			t.Fatalf("unexpected provision error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, duplicates)

	created, err := f.repos.TenantRepository.GetBySlug(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Len(t, f.publisher.events, 1)
}

func TestProvision_OwnerAlreadyHasTenant(t *testing.T) {
	f := newFixture(t)
	created := f.provision(t, "acme", "ada@acme.com")

	_, err := f.svc.Provision(context.Background(), ProvisionRequest{
		Name:        "Second",
		Slug:        "second",
		OwnerUserID: created.OwnerUserID,
	})
	assert.ErrorIs(t, err, er.ErrOwnerAlreadyHasTenant)
}

func TestProvision_UnknownOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Provision(context.Background(), ProvisionRequest{
		Name:        "Acme",
		Slug:        "acme",
		OwnerUserID: "00000000-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, er.ErrUserNotFound)
}

func TestProvision_ProvisionerFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createOwner(t, "ada@acme.com")
	f.provisioner.err = errors.New("schema creation timed out")

	_, err := f.svc.Provision(ctx, ProvisionRequest{
		Name:        "Acme",
		Slug:        "acme",
		OwnerUserID: owner.ID.String(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, er.ErrStructuralProvisioningFailed)

	// No tenant row, no domain row, no owner binding, no event.
	tenant, err := f.repos.TenantRepository.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, tenant)

	routed, _, err := f.repos.TenantRepository.GetByHostname(ctx, "acme.workstack.app")
	require.NoError(t, err)
	assert.Nil(t, routed)

	unbound, err := f.repos.UserRepository.GetByID(ctx, owner.ID.String())
	require.NoError(t, err)
	assert.Nil(t, unbound.TenantID)

	assert.Empty(t, f.publisher.events)

	// A retry with the same slug succeeds once the provisioner recovers.
	f.provisioner.err = nil
	retried, err := f.svc.Provision(ctx, ProvisionRequest{
		Name:        "Acme",
		Slug:        "acme",
		OwnerUserID: owner.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, retried.Active)
}

func TestProvision_PublisherFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	owner := f.createOwner(t, "ada@acme.com")
	f.publisher.err = errors.New("broker unavailable")

	created, err := f.svc.Provision(context.Background(), ProvisionRequest{
		Name:        "Acme",
		Slug:        "acme",
		OwnerUserID: owner.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
}

func TestDeactivate_ParksHostnameAndSuspendsUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	deactivated, err := f.svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	// The original hostname no longer routes anywhere.
	routed, _, err := f.repos.TenantRepository.GetByHostname(ctx, "acme.workstack.app")
	require.NoError(t, err)
	assert.Nil(t, routed)

	// The primary domain is parked under an ordered, owner-scoped name.
	primary, err := f.repos.DomainRepository.GetPrimary(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.True(t, primary.Parked())
	assert.Equal(t, "acme.workstack.app", primary.ParkedHostname)
	assert.True(t, strings.HasSuffix(primary.Hostname, fmt.Sprintf("-%s-acme.workstack.app", created.OwnerUserID)))

	// Users bound to the tenant are suspended.
	owner, err := f.repos.UserRepository.GetByID(ctx, created.OwnerUserID)
	require.NoError(t, err)
	assert.False(t, owner.Active)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, EventTenantDeactivated, f.publisher.events[1].Event)
	assert.Equal(t, "acme.workstack.app", f.publisher.events[1].Hostname)
}

func TestDeactivate_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	_, err := f.svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	firstParked, err := f.repos.DomainRepository.GetPrimary(ctx, created.ID)
	require.NoError(t, err)

	again, err := f.svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, again.Active)

	// The parked name is untouched by the second call.
	secondParked, err := f.repos.DomainRepository.GetPrimary(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, firstParked.Hostname, secondParked.Hostname)
	require.Len(t, f.publisher.events, 2)
}

func TestDeactivate_ReleasedHostnameCanBeClaimed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	_, err := f.svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)

	other := f.provision(t, "globex", "grace@globex.com")
	claimed, err := f.svc.AddDomain(ctx, other.ID, "acme.workstack.app")
	require.NoError(t, err)
	assert.Equal(t, other.ID, claimed.TenantID)
}

func TestReactivate_RestoresHostnameAndUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	_, err := f.svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)

	reactivated, err := f.svc.Reactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)

	primary, err := f.repos.DomainRepository.GetPrimary(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme.workstack.app", primary.Hostname)
	assert.False(t, primary.Parked())

	routed, _, err := f.repos.TenantRepository.GetByHostname(ctx, "acme.workstack.app")
	require.NoError(t, err)
	require.NotNil(t, routed)
	assert.Equal(t, created.ID, routed.ID)

	owner, err := f.repos.UserRepository.GetByID(ctx, created.OwnerUserID)
	require.NoError(t, err)
	assert.True(t, owner.Active)

	require.Len(t, f.publisher.events, 3)
	assert.Equal(t, EventTenantReactivated, f.publisher.events[2].Event)
}

func TestReactivate_CollisionKeepsTenantDeactivated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	_, err := f.svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)

	// Another tenant claims the released hostname while acme is down.
	other := f.provision(t, "globex", "grace@globex.com")
	_, err = f.svc.AddDomain(ctx, other.ID, "acme.workstack.app")
	require.NoError(t, err)

	_, err = f.svc.Reactivate(ctx, created.ID)
	assert.ErrorIs(t, err, er.ErrDomainCollision)

	// The loser stays deactivated with its parked hostname intact.
	stillDown, err := f.repos.TenantRepository.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stillDown.Active)

	primary, err := f.repos.DomainRepository.GetPrimary(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, primary.Parked())

	owner, err := f.repos.UserRepository.GetByID(ctx, created.OwnerUserID)
	require.NoError(t, err)
	assert.False(t, owner.Active)
}

func TestReactivate_IdempotentOnActiveTenant(t *testing.T) {
	f := newFixture(t)
	created := f.provision(t, "acme", "ada@acme.com")

	again, err := f.svc.Reactivate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, again.Active)
	require.Len(t, f.publisher.events, 1) // only the provisioned event
}

func TestHardDelete_RequiresDeactivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	err := f.svc.HardDelete(ctx, created.ID)
	assert.ErrorIs(t, err, er.ErrInconsistentLifecycleState)

	_, err = f.svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.HardDelete(ctx, created.ID))

	gone, err := f.repos.TenantRepository.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUpdate_AllowListedFieldsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	name := "Acme Corporation"
	description := "the coyote supplier"
	updated, err := f.svc.Update(ctx, created.ID, UpdateRequest{
		Name:        &name,
		Description: &description,
		Attributes:  models.JSONMap{"tier": "gold"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", updated.Name)
	assert.Equal(t, "the coyote supplier", updated.Description)

	// Slug and owner are identity and cannot change through Update.
	assert.Equal(t, "acme", updated.Slug)
	assert.Equal(t, created.OwnerUserID, updated.OwnerUserID)
}

func TestRemoveDomain_PrimaryProtected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "acme", "ada@acme.com")

	primary, err := f.repos.DomainRepository.GetPrimary(ctx, created.ID)
	require.NoError(t, err)

	err = f.svc.RemoveDomain(ctx, created.ID, primary.ID)
	assert.ErrorIs(t, err, er.ErrDomainNotFound)

	extra, err := f.svc.AddDomain(ctx, created.ID, "HR.Acme.COM")
	require.NoError(t, err)
	assert.Equal(t, "hr.acme.com", extra.Hostname)
	require.NoError(t, f.svc.RemoveDomain(ctx, created.ID, extra.ID))
}
