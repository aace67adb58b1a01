package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a vendor we order from. Suppliers referenced by products or
// orders are deactivated, never deleted.
type Supplier struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"not null"`
	ContactName *string
	Email       *string
	Phone       *string
	Address     *string
	Notes       *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Products []Product       `gorm:"foreignKey:SupplierID"`
	Orders   []PurchaseOrder `gorm:"foreignKey:SupplierID"`
}
