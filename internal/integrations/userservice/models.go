package userservice

import "github.com/m04kA/septic-booking-service/internal/domain"

// User модель пользователя из UserService
type User struct {
	ID       int64    `json:"id"`
	FullName string   `json:"full_name"`
	Phone    string   `json:"phone"`
	Email    string   `json:"email"`
	Role     string   `json:"role"` // customer, staff, technician, manager
	IsActive bool     `json:"is_active"`
	Address  *Address `json:"address,omitempty"`
}

// Address адрес пользователя
type Address struct {
	Street   string `json:"street"`
	Barangay string `json:"barangay"`
	City     string `json:"city"`
	Province string `json:"province"`
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toDomain конвертирует ответ сервиса в доменную модель
func (u *User) toDomain() *domain.User {
	user := &domain.User{
		ID:       u.ID,
		FullName: u.FullName,
		Phone:    u.Phone,
		Email:    u.Email,
		Role:     domain.Role(u.Role),
		IsActive: u.IsActive,
	}
	if u.Address != nil {
		user.Address = &domain.Address{
			Street:   u.Address.Street,
			Barangay: u.Address.Barangay,
			City:     u.Address.City,
			Province: u.Address.Province,
		}
	}
	return user
}
