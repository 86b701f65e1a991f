package models

import (
	"time"

	"github.com/Caddilac1/DataHub/pkg/types"
)

// Order records a purchase intent for a data bundle. Orders are never
// deleted; they are the audit anchor for the whole fulfillment lifecycle.
type Order struct {
	ID          string            `gorm:"column:id;primary_key;type:varchar(20)" json:"id"`
	UserID      string            `gorm:"column:user_id;type:varchar(20);not null;index:idx_user_status,priority:1" json:"user_id"`
	User        *User             `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	TelcoID     string            `gorm:"column:telco_id;type:varchar(20);not null" json:"telco_id"`
	Telco       *Telco            `gorm:"foreignKey:TelcoID;constraint:OnDelete:RESTRICT" json:"telco,omitempty"`
	BundleID    string            `gorm:"column:bundle_id;type:varchar(20);not null" json:"bundle_id"`
	Bundle      *Bundle           `gorm:"foreignKey:BundleID;constraint:OnDelete:RESTRICT" json:"bundle,omitempty"`
	PhoneNumber string            `gorm:"column:phone_number;type:varchar(15);not null;index" json:"phone_number"`
	Status      types.OrderStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index:idx_user_status,priority:2;index:idx_status_created,priority:1" json:"status"`
	// ProviderOrderID is assigned by the fulfillment provider once the
	// purchase request has been accepted; nil until then.
	ProviderOrderID *string   `gorm:"column:provider_order_id;type:varchar(100)" json:"provider_order_id"`
	IPAddress       string    `gorm:"column:ip_address;type:varchar(45)" json:"ip_address"`
	UserAgent       string    `gorm:"column:user_agent;type:text" json:"user_agent"`
	CreatedAt       time.Time `gorm:"index:idx_status_created,priority:2" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "data_bundle_order"
}
