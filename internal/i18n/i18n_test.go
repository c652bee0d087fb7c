package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoadHasEveryKeyInEveryLocale(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	base := b.messages[DefaultLanguage]
	for tag, dict := range b.messages {
		for key := range base {
			_, ok := dict[key]
			assert.True(t, ok, "%s is missing %s", tag, key)
		}
	}
}

func TestMatch(t *testing.T) {
	b := Default()

	assert.Equal(t, DefaultLanguage, b.Match(""))
	assert.Equal(t, DefaultLanguage, b.Match("pt-BR,pt;q=0.9"))
	assert.Equal(t, language.English, b.Match("en-US,en;q=0.8"))
	assert.Equal(t, DefaultLanguage, b.Match("ja-JP"))
	assert.Equal(t, DefaultLanguage, b.Match(";;;"))
}

func TestT(t *testing.T) {
	b := Default()

	assert.Equal(t, "Você atingiu o limite de 3 cadastros deste tipo.", b.T(DefaultLanguage, "listing.limit_reached", 3))
	assert.Equal(t, `Category "Bakery" not found.`, b.T(language.English, "business.category_not_found", "Bakery"))
	assert.Equal(t, "no.such.key", b.T(language.English, "no.such.key"))
	assert.True(t, b.Has("error.generic"))
}
