package models

import (
	"time"

	"github.com/Caddilac1/DataHub/pkg/types"
)

// User is an account that can place orders. Registration and login flows are
// handled outside this service; rows exist as order owners and audit actors.
type User struct {
	ID            string              `gorm:"column:id;primary_key;type:varchar(20)" json:"id"`
	FullName      string              `gorm:"column:full_name;type:varchar(255);not null" json:"full_name"`
	Email         string              `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	PhoneNumber   string              `gorm:"column:phone_number;type:varchar(15);not null;uniqueIndex" json:"phone_number"`
	Role          types.UserRole      `gorm:"column:role;type:varchar(20);not null;default:'customer'" json:"role"`
	AccountStatus types.AccountStatus `gorm:"column:account_status;type:varchar(30);not null;default:'pending_verification';index" json:"account_status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) Active() bool {
	return u != nil && u.AccountStatus == types.AccountStatusActive
}
