package errors

import "github.com/pkg/errors"

var (
	// tenancy errors
	ErrTenantNotFound               = errors.New("tenant not found")
	ErrTenantAlreadyExists          = errors.New("tenant with this slug already exists")
	ErrOwnerAlreadyHasTenant        = errors.New("owner already has a tenant")
	ErrDomainCollision              = errors.New("hostname already bound to another tenant")
	ErrDomainNotFound               = errors.New("domain not found")
	ErrStructuralProvisioningFailed = errors.New("tenant schema provisioning failed")
	ErrInconsistentLifecycleState   = errors.New("tenant is in an inconsistent lifecycle state")

	// user errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")

	// employee errors
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrCannotDeleteOwner = errors.New("owner employee cannot be deleted")
	ErrEmployeeHasNoUser = errors.New("employee has no linked user")

	// team / title errors
	ErrTeamNotFound  = errors.New("team not found")
	ErrTitleNotFound = errors.New("title not found")
	ErrNameTaken     = errors.New("name already in use")
)
