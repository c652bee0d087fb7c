package models

import (
	"time"
)

// ReviewItemType is the discriminant of a review's polymorphic target as stored
type ReviewItemType string

const (
	ReviewItemBusiness ReviewItemType = "BUSINESS"
	ReviewItemEvent    ReviewItemType = "EVENT"
	ReviewItemJob      ReviewItemType = "JOB"
)

// Review is a public rating of a listing
type Review struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemType  ReviewItemType  `gorm:"size:16;not null;index:idx_reviews_item" json:"itemType"`
	ItemID    uint64          `gorm:"not null;index:idx_reviews_item" json:"itemId"`
	AuthorID  string          `gorm:"size:128;not null;index" json:"authorId"`
	Rating    int             `gorm:"not null" json:"rating"`
	Comment   string          `gorm:"type:text" json:"comment"`
	Response  *ReviewResponse `gorm:"foreignKey:ReviewID" json:"response,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TableName overrides the table name for Review
func (Review) TableName() string {
	return "reviews"
}

// ReviewResponse is the listing owner's single reply to a review
type ReviewResponse struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ReviewID    uint64    `gorm:"not null;uniqueIndex:idx_review_responses_review" json:"reviewId"`
	ResponderID string    `gorm:"size:128;not null;index" json:"responderId"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name for ReviewResponse
func (ReviewResponse) TableName() string {
	return "review_responses"
}

// TicketStatus is the state of a support ticket
type TicketStatus string

// TicketOpen is the only status a ticket is created with
const TicketOpen TicketStatus = "open"

// SupportTicket is an append-only help request
type SupportTicket struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference   string       `gorm:"type:char(36);not null;uniqueIndex:idx_support_tickets_reference" json:"reference"`
	PrincipalID string       `gorm:"size:128;not null;index" json:"principalId"`
	Email       string       `gorm:"size:255" json:"email"`
	Subject     string       `gorm:"size:200;not null" json:"subject"`
	Message     string       `gorm:"type:text;not null" json:"message"`
	Status      TicketStatus `gorm:"size:16;not null;default:open" json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// TableName overrides the table name for SupportTicket
func (SupportTicket) TableName() string {
	return "support_tickets"
}
