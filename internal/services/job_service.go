package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/types"
)

// JobInput is the job wizard's submission
type JobInput struct {
	Title          string           `json:"title"`
	CompanyName    string           `json:"companyName"`
	Description    string           `json:"description"`
	EmploymentType string           `json:"employmentType"`
	Location       string           `json:"location"`
	SalaryRange    string           `json:"salaryRange"`
	ContractorID   types.FlexUint64 `json:"contractorId"`
	Publish        bool             `json:"publish"`
	DateRangeInput
	ContactInput
}

// JobView is the wizard's read model of a job posting
type JobView struct {
	ID             uint64               `json:"id"`
	Title          string               `json:"title"`
	Slug           string               `json:"slug"`
	CompanyName    string               `json:"companyName"`
	Description    string               `json:"description"`
	EmploymentType string               `json:"employmentType"`
	Location       string               `json:"location"`
	SalaryRange    string               `json:"salaryRange"`
	ContractorID   uint64               `json:"contractorId"`
	StartDate      string               `json:"startDate"`
	StartTime      string               `json:"startTime"`
	EndDate        string               `json:"endDate"`
	EndTime        string               `json:"endTime"`
	Contacts       []models.Contact     `json:"contacts"`
	Phone          string               `json:"phone"`
	Email          string               `json:"email"`
	Whatsapp       string               `json:"whatsapp"`
	Logo           string               `json:"logo"`
	LogoURL        string               `json:"logoUrl"`
	CoverImage     string               `json:"coverImage"`
	CoverImageURL  string               `json:"coverImageUrl"`
	Status         models.ListingStatus `json:"status"`
	Active         bool                 `json:"active"`
	PublishedAt    *time.Time           `json:"publishedAt"`
}

func (in *JobInput) validate() (*combinedRange, []models.Contact, map[string]string) {
	fields := map[string]string{}
	in.Title = strings.TrimSpace(in.Title)
	in.CompanyName = strings.TrimSpace(in.CompanyName)

	requireText(fields, "title", in.Title, 200)
	checkLength(fields, "companyName", in.CompanyName, 200)
	checkLength(fields, "description", in.Description, 5000)
	checkLength(fields, "employmentType", in.EmploymentType, 40)
	checkLength(fields, "location", in.Location, 255)
	checkLength(fields, "salaryRange", in.SalaryRange, 120)
	if in.ContractorID == 0 {
		fields["contractorId"] = MsgRequired
	}
	when, _ := in.DateRangeInput.combine(fields, false)
	contacts := in.ContactInput.validate(fields)
	return when, contacts, fields
}

func (r *combinedRange) startPtr() *time.Time {
	if r == nil {
		return nil
	}
	start := r.start
	return &start
}

func (r *combinedRange) endPtr() *time.Time {
	if r == nil {
		return nil
	}
	return r.end
}

func companyNameFor(in string, contractor *models.Business) string {
	if in != "" {
		return in
	}
	return contractor.Name
}

// CreateJob runs the job creation workflow for principal
func (s *Service) CreateJob(ctx context.Context, principal string, in JobInput) (Result, error) {
	return s.createListing(ctx, principal, KindJob, func(tx *gorm.DB, owner *models.User) (Result, error) {
		when, contacts, fields := in.validate()
		if len(fields) > 0 {
			return invalid(fields), nil
		}

		contractor, err := ownedBusiness(tx, in.ContractorID.Uint64(), owner.PrincipalID)
		if err != nil {
			return Result{}, err
		}
		if contractor == nil {
			return fail(MsgContractorMissing), nil
		}

		j := models.Job{
			OwnerID:        owner.PrincipalID,
			ContractorID:   contractor.ID,
			Title:          in.Title,
			Slug:           s.newSlug(KindJob, in.Title),
			CompanyName:    companyNameFor(in.CompanyName, contractor),
			Description:    s.sanitizeDescription(in.Description),
			EmploymentType: strings.TrimSpace(in.EmploymentType),
			Location:       strings.TrimSpace(in.Location),
			SalaryRange:    strings.TrimSpace(in.SalaryRange),
			StartsAt:       when.startPtr(),
			EndsAt:         when.endPtr(),
			Contacts:       contacts,
			Phone:          in.Phone,
			Email:          in.Email,
			Whatsapp:       in.Whatsapp,
			Status:         requestedStatus(in.Publish),
		}
		if err := tx.Create(&j).Error; err != nil {
			return Result{}, err
		}
		return ok(j.ID), nil
	})
}

// UpdateJob rewrites the editable fields of a job owned by principal
func (s *Service) UpdateJob(ctx context.Context, principal string, id uint64, in JobInput) (Result, error) {
	if principal == "" {
		return Result{}, ErrUnauthenticated
	}
	when, contacts, fields := in.validate()
	if id == 0 {
		fields["id"] = MsgRequired
	}
	if len(fields) > 0 {
		return invalid(fields), nil
	}

	return s.updateListing(ctx, KindJob, func(tx *gorm.DB) (Result, error) {
		var j models.Job
		if err := tx.Where("id = ? AND owner_id = ?", id, principal).Limit(1).Find(&j).Error; err != nil {
			return Result{}, err
		}
		if j.ID == 0 {
			return fail(MsgListingNotFound), nil
		}

		contractor, err := ownedBusiness(tx, in.ContractorID.Uint64(), principal)
		if err != nil {
			return Result{}, err
		}
		if contractor == nil {
			return fail(MsgContractorMissing), nil
		}

		slug, err := s.updatedSlug(tx, KindJob, j.ID, j.Slug, in.Title)
		if err != nil {
			return Result{}, err
		}

		updates := map[string]interface{}{
			"title":           in.Title,
			"slug":            slug,
			"company_name":    companyNameFor(in.CompanyName, contractor),
			"description":     s.sanitizeDescription(in.Description),
			"employment_type": strings.TrimSpace(in.EmploymentType),
			"location":        strings.TrimSpace(in.Location),
			"salary_range":    strings.TrimSpace(in.SalaryRange),
			"contractor_id":   contractor.ID,
			"starts_at":       when.startPtr(),
			"ends_at":         when.endPtr(),
			"contacts":        models.JSONList[models.Contact](contacts),
			"phone":           in.Phone,
			"email":           in.Email,
			"whatsapp":        in.Whatsapp,
			"updated_at":      s.now(),
		}
		if status, changed := resubmittedStatus(j.Status, in.Publish); changed {
			updates["status"] = status
			if status == models.StatusDraft {
				updates["active"] = false
			}
		}

		if err := tx.Model(&models.Job{}).
			Where("id = ? AND owner_id = ?", j.ID, principal).
			Updates(updates).Error; err != nil {
			return Result{}, err
		}
		return ok(j.ID), nil
	})
}

// GetJob is the owner-scoped read of one job posting
func (s *Service) GetJob(ctx context.Context, principal string, id uint64) (*JobView, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}
	var j models.Job
	err := s.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, principal).Limit(1).Find(&j).Error
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if j.ID == 0 {
		return nil, nil
	}
	view := s.jobView(&j)
	return &view, nil
}

// ListJobs returns the job postings owned by principal, newest first
func (s *Service) ListJobs(ctx context.Context, principal string) ([]JobView, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}
	var rows []models.Job
	if err := s.DB.WithContext(ctx).Where("owner_id = ?", principal).
		Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	views := make([]JobView, 0, len(rows))
	for i := range rows {
		views = append(views, s.jobView(&rows[i]))
	}
	return views, nil
}

func (s *Service) jobView(j *models.Job) JobView {
	startDate, startTime := SplitOptional(j.StartsAt)
	endDate, endTime := SplitOptional(j.EndsAt)

	view := JobView{
		ID:             j.ID,
		Title:          j.Title,
		Slug:           j.Slug,
		CompanyName:    j.CompanyName,
		Description:    j.Description,
		EmploymentType: j.EmploymentType,
		Location:       j.Location,
		SalaryRange:    j.SalaryRange,
		ContractorID:   j.ContractorID,
		StartDate:      startDate,
		StartTime:      startTime,
		EndDate:        endDate,
		EndTime:        endTime,
		Contacts:       MergeContacts(j.Contacts.Slice(), LegacyContacts{Phone: j.Phone, Whatsapp: j.Whatsapp, Email: j.Email}),
		Phone:          j.Phone,
		Email:          j.Email,
		Whatsapp:       j.Whatsapp,
		Logo:           j.LogoURL,
		CoverImage:     j.CoverImageURL,
		Status:         j.Status,
		Active:         j.Active,
		PublishedAt:    j.PublishedAt,
	}
	if j.LogoURL != "" {
		view.LogoURL = s.publicURL(j.LogoURL)
	}
	if j.CoverImageURL != "" {
		view.CoverImageURL = s.publicURL(j.CoverImageURL)
	}
	return view
}
