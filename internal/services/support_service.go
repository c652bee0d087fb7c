package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/localnerve/conexo-admin/internal/events"
	"github.com/localnerve/conexo-admin/internal/models"
)

// TicketInput is a support request
type TicketInput struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// TicketEvent is the payload of support.ticket_created
type TicketEvent struct {
	Reference   string `json:"reference"`
	PrincipalID string `json:"principalId"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

// CreateTicket records a support ticket for principal with status open
func (s *Service) CreateTicket(ctx context.Context, principal string, in TicketInput) (*models.SupportTicket, Result, error) {
	if principal == "" {
		return nil, Result{}, ErrUnauthenticated
	}

	subject := strings.TrimSpace(s.strict.Sanitize(in.Subject))
	message := strings.TrimSpace(s.strict.Sanitize(in.Message))
	fields := map[string]string{}
	requireText(fields, "subject", subject, 200)
	requireText(fields, "message", message, 5000)
	if len(fields) > 0 {
		return nil, Result{Error: MsgSupportInvalid, Fields: fields}, nil
	}

	user, err := s.ResolveOrCreateUser(ctx, principal)
	if err != nil {
		return nil, Result{}, err
	}

	ticket := models.SupportTicket{
		Reference:   uuid.NewString(),
		PrincipalID: principal,
		Email:       user.Email,
		Subject:     subject,
		Message:     message,
		Status:      models.TicketOpen,
		CreatedAt:   s.now(),
	}
	if err := s.DB.WithContext(ctx).Create(&ticket).Error; err != nil {
		return nil, Result{}, fmt.Errorf("create ticket: %w", err)
	}

	events.Emit(ctx, s.Events, s.Log, events.SupportTicketCreated, TicketEvent{
		Reference:   ticket.Reference,
		PrincipalID: principal,
		Email:       ticket.Email,
		Subject:     subject,
		Message:     message,
	})
	return &ticket, ok(ticket.ID), nil
}
