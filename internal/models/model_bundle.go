package models

import (
	"fmt"
	"time"
)

// Bundle is a purchasable data allotment tied to a telco. Bundles are soft
// deleted (IsActive=false) so historical orders keep a valid reference.
type Bundle struct {
	ID      string `gorm:"column:id;primary_key;type:varchar(20)" json:"id"`
	TelcoID string `gorm:"column:telco_id;type:varchar(20);not null;uniqueIndex:unique_telco_name_size,priority:1;index:idx_telco_active,priority:1" json:"telco_id"`
	Telco   *Telco `gorm:"foreignKey:TelcoID;constraint:OnDelete:RESTRICT" json:"telco,omitempty"`
	Name    string `gorm:"column:name;type:varchar(50);not null;uniqueIndex:unique_telco_name_size,priority:2" json:"name"`
	SizeMB  int    `gorm:"column:size_mb;not null;uniqueIndex:unique_telco_name_size,priority:3" json:"size_mb"`
	// Price in cedis with two decimal places. Minor-unit conversion happens
	// only in the gateway adapter.
	Price        float64 `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	IsInstock    bool    `gorm:"column:is_instock;not null;default:true;index" json:"is_instock"`
	IsOutOfStock bool    `gorm:"column:is_out_of_stock;not null;default:false" json:"is_out_of_stock"`
	IsLimited    bool    `gorm:"column:is_limited;not null;default:false" json:"is_limited"`
	IsActive     bool    `gorm:"column:is_active;not null;default:true;index:idx_telco_active,priority:2" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bundle) TableName() string {
	return "bundle"
}

// Purchasable reports whether the bundle can be ordered right now.
func (b *Bundle) Purchasable() bool {
	return b != nil && b.IsActive && b.IsInstock && !b.IsOutOfStock
}

// CapacityGB renders the bundle size the way the fulfillment API expects it,
// e.g. 1000MB -> "1", 1500MB -> "1.5".
func (b *Bundle) CapacityGB() string {
	return fmt.Sprintf("%g", float64(b.SizeMB)/1000)
}
