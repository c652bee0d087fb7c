package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localnerve/conexo-admin/internal/models"
)

func TestMergeContacts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		structured []models.Contact
		legacy     LegacyContacts
		want       []models.Contact
	}{
		{
			name:   "legacy only",
			legacy: LegacyContacts{Phone: "(11) 4000-1000", Email: "loja@example.com"},
			want: []models.Contact{
				{Type: models.ContactPhone, Value: "(11) 4000-1000"},
				{Type: models.ContactEmail, Value: "loja@example.com"},
			},
		},
		{
			name: "structured wins over the same legacy value",
			structured: []models.Contact{
				{Type: models.ContactPhone, Value: "11 4000 1000", Responsible: "Ana"},
			},
			legacy: LegacyContacts{Phone: "(11) 4000-1000"},
			want: []models.Contact{
				{Type: models.ContactPhone, Value: "11 4000 1000", Responsible: "Ana"},
			},
		},
		{
			name: "legacy fills gaps",
			structured: []models.Contact{
				{Type: models.ContactInstagram, Value: "@loja"},
			},
			legacy: LegacyContacts{Whatsapp: "11999990000"},
			want: []models.Contact{
				{Type: models.ContactInstagram, Value: "@loja"},
				{Type: models.ContactWhatsapp, Value: "11999990000"},
			},
		},
		{
			name: "email match ignores case",
			structured: []models.Contact{
				{Type: models.ContactEmail, Value: "Loja@Example.com"},
			},
			legacy: LegacyContacts{Email: "loja@example.com"},
			want: []models.Contact{
				{Type: models.ContactEmail, Value: "Loja@Example.com"},
			},
		},
		{
			name: "empty values dropped",
			structured: []models.Contact{
				{Type: models.ContactWebsite, Value: "  "},
			},
			legacy: LegacyContacts{},
			want:   []models.Contact{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MergeContacts(tt.structured, tt.legacy))
		})
	}
}

func TestValidateContacts(t *testing.T) {
	t.Parallel()

	fields := map[string]string{}
	cleaned := validateContacts([]models.Contact{
		{Type: models.ContactPhone, Value: " 1140001000 "},
		{Type: "fax", Value: "123"},
		{Type: models.ContactEmail, Value: "not-an-email"},
		{Type: models.ContactOther},
	}, fields)

	assert.Equal(t, []models.Contact{{Type: models.ContactPhone, Value: "1140001000"}}, cleaned)
	assert.Equal(t, MsgInvalidContact, fields["contacts"])
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "5511999990000", NormalizePhone("+55 (11) 99999-0000"))
}
