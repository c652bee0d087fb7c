package models

import (
	"time"
)

// UsageHistory records account activity for a principal
type UsageHistory struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	PrincipalID string    `gorm:"size:128;not null;index"`
	Action      string    `gorm:"size:64;not null"`
	Metadata    JSON      `gorm:"not null"`
	OccurredAt  time.Time `gorm:"not null"`
}

// TableName overrides the table name for UsageHistory
func (UsageHistory) TableName() string {
	return "usage_history"
}

// StorageObject tracks an uploaded object so a hard reset can find it
type StorageObject struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	PrincipalID string    `gorm:"size:128;not null;index"`
	Key         string    `gorm:"column:object_key;size:512;not null;uniqueIndex:idx_storage_objects_key"`
	ContentType string    `gorm:"size:64"`
	Size        int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// TableName overrides the table name for StorageObject
func (StorageObject) TableName() string {
	return "storage_objects"
}

// CreditBalance holds a principal's prepaid balance
type CreditBalance struct {
	PrincipalID string `gorm:"primaryKey;size:128"`
	Balance     int64  `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

// TableName overrides the table name for CreditBalance
func (CreditBalance) TableName() string {
	return "credit_balances"
}

// SubscriptionEvent is a billing audit record. It outlives the account:
// a hard reset detaches it by nulling PrincipalID.
type SubscriptionEvent struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	PrincipalID *string `gorm:"size:128;index"`
	Kind        string  `gorm:"size:64;not null"`
	Payload     JSON    `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName overrides the table name for SubscriptionEvent
func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}

// All lists every model managed by migrations, in dependency order
func All() []interface{} {
	return []interface{}{
		&User{},
		&PurgedPrincipal{},
		&Category{},
		&Business{},
		&Event{},
		&Job{},
		&Review{},
		&ReviewResponse{},
		&SupportTicket{},
		&UsageHistory{},
		&StorageObject{},
		&CreditBalance{},
		&SubscriptionEvent{},
	}
}
