package models

import "time"

// Telco is a mobile network operator. Code is the provider-specific network
// code sent to the fulfillment API.
type Telco struct {
	ID        string    `gorm:"column:id;primary_key;type:varchar(20)" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Code      string    `gorm:"column:code;type:varchar(20);not null;uniqueIndex" json:"code"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Telco) TableName() string {
	return "telco"
}
