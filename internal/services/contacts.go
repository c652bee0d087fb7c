package services

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/localnerve/conexo-admin/internal/models"
)

// LegacyContacts are the scalar contact columns that predate the structured list
type LegacyContacts struct {
	Phone    string
	Whatsapp string
	Email    string
}

// MergeContacts returns the structured contacts followed by any legacy
// scalar that no structured entry of the same type already carries.
// Empty values are dropped.
func MergeContacts(structured []models.Contact, legacy LegacyContacts) []models.Contact {
	merged := make([]models.Contact, 0, len(structured)+3)
	seen := make(map[string]bool)

	for _, c := range structured {
		value := strings.TrimSpace(c.Value)
		if value == "" {
			continue
		}
		c.Value = value
		merged = append(merged, c)
		seen[contactKey(c.Type, value)] = true
	}

	fill := []models.Contact{
		{Type: models.ContactPhone, Value: legacy.Phone},
		{Type: models.ContactWhatsapp, Value: legacy.Whatsapp},
		{Type: models.ContactEmail, Value: legacy.Email},
	}
	for _, c := range fill {
		value := strings.TrimSpace(c.Value)
		if value == "" || seen[contactKey(c.Type, value)] {
			continue
		}
		c.Value = value
		merged = append(merged, c)
		seen[contactKey(c.Type, value)] = true
	}

	return merged
}

func contactKey(t models.ContactType, value string) string {
	return string(t) + ":" + normalizeContactValue(t, value)
}

func normalizeContactValue(t models.ContactType, value string) string {
	switch t {
	case models.ContactPhone, models.ContactWhatsapp:
		return NormalizePhone(value)
	case models.ContactEmail:
		return strings.ToLower(strings.TrimSpace(value))
	}
	return strings.TrimSpace(value)
}

// NormalizePhone keeps only the digits of a phone number
func NormalizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validateContacts checks each structured contact and returns a field error map
func validateContacts(contacts []models.Contact, fields map[string]string) []models.Contact {
	cleaned := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		c.Value = strings.TrimSpace(c.Value)
		c.Responsible = strings.TrimSpace(c.Responsible)
		if c.Value == "" && c.Responsible == "" {
			continue
		}
		if !c.Type.Valid() || c.Value == "" || len(c.Value) > 255 || len(c.Responsible) > 120 {
			fields["contacts"] = MsgInvalidContact
			continue
		}
		if c.Type == models.ContactEmail && !validEmail(c.Value) {
			fields["contacts"] = MsgInvalidContact
			continue
		}
		cleaned = append(cleaned, c)
	}
	return cleaned
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
