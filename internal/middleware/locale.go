package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"github.com/localnerve/conexo-admin/internal/i18n"
)

const localLang = "lang"

// Locale resolves the Accept-Language header and stores the language in context
func Locale(bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localLang, bundle.Match(c.Get(fiber.HeaderAcceptLanguage)))
		return c.Next()
	}
}

// Lang is the language chosen by Locale, or the default language
func Lang(c *fiber.Ctx) language.Tag {
	if tag, ok := c.Locals(localLang).(language.Tag); ok {
		return tag
	}
	return i18n.DefaultLanguage
}
