package domain

import "time"

type AccountRole string

const (
	AccountRoleOwner AccountRole = "owner"
	AccountRoleAdmin AccountRole = "admin"
)

type AdminAccount struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         AccountRole `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
}
