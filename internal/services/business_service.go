package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/models"
)

// BusinessInput is the business wizard's submission
type BusinessInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Address      string `json:"address"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Publish      bool   `json:"publish"`
	ContactInput
}

// BusinessView is the wizard's read model of a business
type BusinessView struct {
	ID            uint64           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	CategoryID    uint64           `json:"categoryId"`
	Category      string           `json:"category"`
	CategorySlug  string           `json:"categorySlug"`
	Address       string           `json:"address"`
	Neighborhood  string           `json:"neighborhood"`
	City          string           `json:"city"`
	State         string           `json:"state"`
	Contacts      []models.Contact `json:"contacts"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email"`
	Whatsapp      string           `json:"whatsapp"`
	Logo          string           `json:"logo"`
	LogoURL       string           `json:"logoUrl"`
	CoverImage    string           `json:"coverImage"`
	CoverImageURL string           `json:"coverImageUrl"`
	GalleryImages []string         `json:"galleryImages"`
	GalleryURLs   []string         `json:"galleryUrls"`
	Published     bool             `json:"published"`
	PublishedAt   *time.Time       `json:"publishedAt"`
	Verified      bool             `json:"verified"`
	IsOpen        bool             `json:"isOpen"`
}

func (in *BusinessInput) validate() ([]models.Contact, map[string]string) {
	fields := map[string]string{}
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)

	requireText(fields, "name", in.Name, 200)
	requireText(fields, "category", in.Category, 140)
	checkLength(fields, "description", in.Description, 5000)
	checkLength(fields, "address", in.Address, 255)
	checkLength(fields, "neighborhood", in.Neighborhood, 120)
	checkLength(fields, "city", in.City, 120)
	checkLength(fields, "state", in.State, 60)
	contacts := in.ContactInput.validate(fields)
	return contacts, fields
}

// CreateBusiness runs the business creation workflow for principal
func (s *Service) CreateBusiness(ctx context.Context, principal string, in BusinessInput) (Result, error) {
	return s.createListing(ctx, principal, KindBusiness, func(tx *gorm.DB, owner *models.User) (Result, error) {
		contacts, fields := in.validate()
		if len(fields) > 0 {
			return invalid(fields), nil
		}

		category, err := findCategory(tx, in.Category)
		if err != nil {
			return Result{}, err
		}
		if category == nil {
			return fail(MsgCategoryNotFound, in.Category), nil
		}

		b := models.Business{
			OwnerID:      owner.PrincipalID,
			Name:         in.Name,
			Slug:         s.newSlug(KindBusiness, in.Name),
			Description:  s.sanitizeDescription(in.Description),
			CategoryID:   category.ID,
			Address:      strings.TrimSpace(in.Address),
			Neighborhood: strings.TrimSpace(in.Neighborhood),
			City:         strings.TrimSpace(in.City),
			State:        strings.TrimSpace(in.State),
			Contacts:     contacts,
			Phone:        in.Phone,
			Email:        in.Email,
			Whatsapp:     in.Whatsapp,
			Published:    in.Publish,
		}
		if in.Publish {
			now := s.now()
			b.PublishedAt = &now
		}

		if err := tx.Create(&b).Error; err != nil {
			return Result{}, err
		}
		return ok(b.ID), nil
	})
}

// UpdateBusiness rewrites the editable fields of a business owned by principal
func (s *Service) UpdateBusiness(ctx context.Context, principal string, id uint64, in BusinessInput) (Result, error) {
	if principal == "" {
		return Result{}, ErrUnauthenticated
	}
	contacts, fields := in.validate()
	if id == 0 {
		fields["id"] = MsgRequired
	}
	if len(fields) > 0 {
		return invalid(fields), nil
	}

	return s.updateListing(ctx, KindBusiness, func(tx *gorm.DB) (Result, error) {
		b, err := ownedBusiness(tx, id, principal)
		if err != nil {
			return Result{}, err
		}
		if b == nil {
			return fail(MsgListingNotFound), nil
		}

		category, err := findCategory(tx, in.Category)
		if err != nil {
			return Result{}, err
		}
		if category == nil {
			return fail(MsgCategoryNotFound, in.Category), nil
		}

		slug, err := s.updatedSlug(tx, KindBusiness, b.ID, b.Slug, in.Name)
		if err != nil {
			return Result{}, err
		}

		updates := map[string]interface{}{
			"name":         in.Name,
			"slug":         slug,
			"description":  s.sanitizeDescription(in.Description),
			"category_id":  category.ID,
			"address":      strings.TrimSpace(in.Address),
			"neighborhood": strings.TrimSpace(in.Neighborhood),
			"city":         strings.TrimSpace(in.City),
			"state":        strings.TrimSpace(in.State),
			"contacts":     models.JSONList[models.Contact](contacts),
			"phone":        in.Phone,
			"email":        in.Email,
			"whatsapp":     in.Whatsapp,
			"published":    in.Publish,
			"updated_at":   s.now(),
		}
		if in.Publish && b.PublishedAt == nil {
			updates["published_at"] = s.now()
		}

		if err := tx.Model(&models.Business{}).
			Where("id = ? AND owner_id = ?", b.ID, principal).
			Updates(updates).Error; err != nil {
			return Result{}, err
		}
		return ok(b.ID), nil
	})
}

// GetBusiness is the owner-scoped read of one business
func (s *Service) GetBusiness(ctx context.Context, principal string, id uint64) (*BusinessView, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}
	var b models.Business
	err := s.DB.WithContext(ctx).Preload("Category").
		Where("id = ? AND owner_id = ?", id, principal).Limit(1).Find(&b).Error
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	if b.ID == 0 {
		return nil, nil
	}
	view := s.businessView(&b)
	return &view, nil
}

// ListBusinesses returns the businesses owned by principal, newest first
func (s *Service) ListBusinesses(ctx context.Context, principal string) ([]BusinessView, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}
	var rows []models.Business
	if err := s.DB.WithContext(ctx).Preload("Category").
		Where("owner_id = ?", principal).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	views := make([]BusinessView, 0, len(rows))
	for i := range rows {
		views = append(views, s.businessView(&rows[i]))
	}
	return views, nil
}

func (s *Service) businessView(b *models.Business) BusinessView {
	gallery := b.GalleryImages.Slice()
	view := BusinessView{
		ID:            b.ID,
		Name:          b.Name,
		Slug:          b.Slug,
		Description:   b.Description,
		CategoryID:    b.CategoryID,
		Address:       b.Address,
		Neighborhood:  b.Neighborhood,
		City:          b.City,
		State:         b.State,
		Contacts:      MergeContacts(b.Contacts.Slice(), LegacyContacts{Phone: b.Phone, Whatsapp: b.Whatsapp, Email: b.Email}),
		Phone:         b.Phone,
		Email:         b.Email,
		Whatsapp:      b.Whatsapp,
		Logo:          b.LogoURL,
		CoverImage:    b.CoverImageURL,
		GalleryImages: gallery,
		GalleryURLs:   s.mediaURLs(gallery),
		Published:     b.Published,
		PublishedAt:   b.PublishedAt,
		Verified:      b.Verified,
		IsOpen:        b.IsOpen,
	}
	if b.Category != nil {
		view.Category = b.Category.Name
		view.CategorySlug = b.Category.Slug
	}
	if b.LogoURL != "" {
		view.LogoURL = s.publicURL(b.LogoURL)
	}
	if b.CoverImageURL != "" {
		view.CoverImageURL = s.publicURL(b.CoverImageURL)
	}
	return view
}

// findCategory resolves a category by name or slug, or nil
func findCategory(tx *gorm.DB, ref string) (*models.Category, error) {
	var c models.Category
	err := tx.Where("name = ? OR slug = ? OR slug = ?", ref, strings.ToLower(ref), Slugify(ref)).Order("id").Limit(1).Find(&c).Error
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

// ListCategories returns every category by name
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := s.DB.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return rows, nil
}
