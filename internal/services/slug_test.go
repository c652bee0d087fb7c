package services

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/conexo-admin/tests/helpers"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "diacritics kept", title: "Café & Padaria!!", want: "café-padaria"},
		{name: "lower folded", title: "Loja A", want: "loja-a"},
		{name: "runs collapse", title: "  --Oficina   do   Zé--  ", want: "oficina-do-zé"},
		{name: "digits kept", title: "Feira 2024 #3", want: "feira-2024-3"},
		{name: "only punctuation", title: "!!! ---", want: ""},
		{name: "empty", title: "", want: ""},
		{name: "decomposed input", title: "Cafe\u0301", want: "café"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugifyLimitsLength(t *testing.T) {
	t.Parallel()
	slug := Slugify(strings.Repeat("a", 500))
	assert.Len(t, []rune(slug), maxSlugRunes)
}

func TestFallbackSlug(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1732100000123)
	slug := FallbackSlug("evento", now)
	assert.Equal(t, "evento-1732100000123", slug)
	assert.Regexp(t, regexp.MustCompile(`^evento-\d+$`), slug)
}

func TestResolveUniqueSlug(t *testing.T) {
	db := helpers.NewTestDB(t)
	first := helpers.CreateBusiness(t, db, "p1", "Loja", "loja")
	helpers.CreateBusiness(t, db, "p1", "Loja 1", "loja-1")

	t.Run("probes past taken candidates", func(t *testing.T) {
		slug, err := ResolveUniqueSlug(db, "businesses", "loja", 0, 50)
		require.NoError(t, err)
		assert.Equal(t, "loja-2", slug)
	})

	t.Run("ignores the excluded row", func(t *testing.T) {
		slug, err := ResolveUniqueSlug(db, "businesses", "loja", first.ID, 50)
		require.NoError(t, err)
		assert.Equal(t, "loja", slug)
	})

	t.Run("falls back to a random suffix after the cap", func(t *testing.T) {
		slug, err := ResolveUniqueSlug(db, "businesses", "loja", 0, 2)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^loja-[0-9a-f]{8}$`), slug)
	})
}
