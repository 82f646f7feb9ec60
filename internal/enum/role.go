package enum

type EmployeeRole string

const (
	EmployeeRoleOwner    EmployeeRole = "owner"
	EmployeeRoleManager  EmployeeRole = "manager"
	EmployeeRoleEmployee EmployeeRole = "employee"
)

func (e EmployeeRole) String() string {
	return string(e)
}

func DecodeEmployeeRole(s string) EmployeeRole {
	switch s {
	case "owner":
		return EmployeeRoleOwner
	case "manager":
		return EmployeeRoleManager
	default:
		return EmployeeRoleEmployee
	}
}
