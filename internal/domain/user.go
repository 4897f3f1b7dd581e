package domain

// Role роль участника, от имени которого вызывается операция
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStaff      Role = "staff"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
)

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleTechnician, RoleManager:
		return true
	default:
		return false
	}
}

// IsBackOffice returns true for staff and manager roles
func (r Role) IsBackOffice() bool {
	return r == RoleStaff || r == RoleManager
}

// Actor явная идентичность вызывающего (вместо глобального "текущего пользователя")
type Actor struct {
	ID   int64
	Role Role
}

// User учётная запись из UserService
type User struct {
	ID       int64
	FullName string
	Phone    string
	Email    string
	Role     Role
	IsActive bool
	Address  *Address
}

// Address адрес клиента
type Address struct {
	Street   string
	Barangay string
	City     string
	Province string
}
