package models

import (
	"time"
)

// ListingStatus is the moderation state of an event or job
type ListingStatus string

const (
	StatusDraft     ListingStatus = "draft"
	StatusPending   ListingStatus = "pending"
	StatusPublished ListingStatus = "published"
	StatusRejected  ListingStatus = "rejected"
)

// ContactType tags a structured contact entry
type ContactType string

const (
	ContactPhone     ContactType = "phone"
	ContactWhatsapp  ContactType = "whatsapp"
	ContactEmail     ContactType = "email"
	ContactInstagram ContactType = "instagram"
	ContactWebsite   ContactType = "website"
	ContactFacebook  ContactType = "facebook"
	ContactLinkedin  ContactType = "linkedin"
	ContactOther     ContactType = "other"
)

// Valid reports whether t is a known contact type
func (t ContactType) Valid() bool {
	switch t {
	case ContactPhone, ContactWhatsapp, ContactEmail, ContactInstagram,
		ContactWebsite, ContactFacebook, ContactLinkedin, ContactOther:
		return true
	}
	return false
}

// Contact is one element of a listing's structured contact list
type Contact struct {
	Type        ContactType `json:"type"`
	Value       string      `json:"value"`
	Responsible string      `json:"responsible,omitempty"`
}

// Category classifies businesses
type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex:idx_categories_name" json:"name"`
	Slug      string    `gorm:"size:140;not null;uniqueIndex:idx_categories_slug" json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// Business is a directory listing owned by one principal
type Business struct {
	ID            uint64              `gorm:"primaryKey;autoIncrement"`
	OwnerID       string              `gorm:"size:128;not null;index:idx_businesses_owner"`
	Name          string              `gorm:"size:200;not null"`
	Slug          string              `gorm:"size:240;not null;uniqueIndex:idx_businesses_slug"`
	Description   string              `gorm:"type:text"`
	CategoryID    uint64              `gorm:"not null;index"`
	Category      *Category           `gorm:"foreignKey:CategoryID"`
	Address       string              `gorm:"size:255"`
	Neighborhood  string              `gorm:"size:120"`
	City          string              `gorm:"size:120"`
	State         string              `gorm:"size:60"`
	Contacts      JSONList[Contact]   `gorm:"not null"`
	Phone         string              `gorm:"size:32"`
	Email         string              `gorm:"size:255"`
	Whatsapp      string              `gorm:"size:32"`
	LogoURL       string              `gorm:"size:512"`
	CoverImageURL string              `gorm:"size:512"`
	GalleryImages JSONList[string]    `gorm:"not null"`
	Published     bool                `gorm:"not null;default:false"`
	PublishedAt   *time.Time
	Verified      bool                `gorm:"not null;default:false"`
	IsOpen        bool                `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for Business
func (Business) TableName() string {
	return "businesses"
}

// Event is a dated listing published under one of the owner's businesses
type Event struct {
	ID            uint64            `gorm:"primaryKey;autoIncrement"`
	OwnerID       string            `gorm:"size:128;not null;index:idx_events_owner"`
	OrganizerID   uint64            `gorm:"not null;index"`
	Organizer     *Business         `gorm:"foreignKey:OrganizerID"`
	Title         string            `gorm:"size:200;not null"`
	Slug          string            `gorm:"size:240;not null;uniqueIndex:idx_events_slug"`
	Description   string            `gorm:"type:text"`
	Location      string            `gorm:"size:255"`
	StartsAt      time.Time         `gorm:"not null"`
	EndsAt        *time.Time
	Contacts      JSONList[Contact] `gorm:"not null"`
	Phone         string            `gorm:"size:32"`
	Email         string            `gorm:"size:255"`
	Whatsapp      string            `gorm:"size:32"`
	CoverImageURL string            `gorm:"size:512"`
	GalleryImages JSONList[string]  `gorm:"not null"`
	Status        ListingStatus     `gorm:"size:16;not null;default:draft;index"`
	Active        bool              `gorm:"not null;default:false"`
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for Event
func (Event) TableName() string {
	return "events"
}

// Job is a job posting published under one of the owner's businesses
type Job struct {
	ID             uint64            `gorm:"primaryKey;autoIncrement"`
	OwnerID        string            `gorm:"size:128;not null;index:idx_jobs_owner"`
	ContractorID   uint64            `gorm:"not null;index"`
	Contractor     *Business         `gorm:"foreignKey:ContractorID"`
	Title          string            `gorm:"size:200;not null"`
	Slug           string            `gorm:"size:240;not null;uniqueIndex:idx_jobs_slug"`
	CompanyName    string            `gorm:"size:200"`
	Description    string            `gorm:"type:text"`
	EmploymentType string            `gorm:"size:40"`
	Location       string            `gorm:"size:255"`
	SalaryRange    string            `gorm:"size:120"`
	StartsAt       *time.Time
	EndsAt         *time.Time
	Contacts       JSONList[Contact] `gorm:"not null"`
	Phone          string            `gorm:"size:32"`
	Email          string            `gorm:"size:255"`
	Whatsapp       string            `gorm:"size:32"`
	LogoURL        string            `gorm:"size:512"`
	CoverImageURL  string            `gorm:"size:512"`
	Status         ListingStatus     `gorm:"size:16;not null;default:draft;index"`
	Active         bool              `gorm:"not null;default:false"`
	PublishedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the table name for Job
func (Job) TableName() string {
	return "jobs"
}
