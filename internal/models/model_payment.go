package models

import (
	"time"

	"github.com/Caddilac1/DataHub/pkg/types"
)

// Payment records the payment intent for exactly one order. Reference is the
// correlation key shared with the gateway; it is generated once at order
// creation and never transformed.
type Payment struct {
	ID      string `gorm:"column:id;primary_key;type:varchar(20)" json:"id"`
	OrderID string `gorm:"column:order_id;type:varchar(20);not null;uniqueIndex" json:"order_id"`
	Order   *Order `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"order,omitempty"`
	// Amount in cedis with two decimal places.
	Amount    float64             `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	Reference string              `gorm:"column:reference;type:varchar(100);not null;uniqueIndex" json:"reference"`
	Status    types.PaymentStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	PaidAt    *time.Time          `gorm:"column:paid_at" json:"paid_at"`
	IPAddress string              `gorm:"column:ip_address;type:varchar(45)" json:"ip_address"`
	UserAgent string              `gorm:"column:user_agent;type:text" json:"user_agent"`
	CreatedAt time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}
