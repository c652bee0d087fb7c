package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const maxSlugRunes = 200

// Slugify lower-folds title and collapses every run of characters that are
// neither letters nor digits into a single hyphen. Diacritics survive.
func Slugify(title string) string {
	// A Caser is stateful, so one is built per call
	lower := cases.Lower(language.Und).String(norm.NFC.String(title))

	var b strings.Builder
	pendingHyphen := false
	runes := 0
	for _, r := range lower {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingHyphen = true
			continue
		}
		if runes >= maxSlugRunes {
			break
		}
		if pendingHyphen && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingHyphen = false
		b.WriteRune(r)
		runes++
	}
	return b.String()
}

// FallbackSlug is used when a title has no letters or digits
func FallbackSlug(typeWord string, now time.Time) string {
	return fmt.Sprintf("%s-%d", typeWord, now.UnixMilli())
}

// ResolveUniqueSlug probes base, base-1, base-2, ... in table, ignoring the
// row excludeID, and returns the first free candidate. After maxProbes
// candidates it falls back to a random suffix.
func ResolveUniqueSlug(tx *gorm.DB, table, base string, excludeID uint64, maxProbes int) (string, error) {
	for i := 0; i < maxProbes; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}

		taken, err := slugTaken(tx, table, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

func slugTaken(tx *gorm.DB, table, candidate string, excludeID uint64) (bool, error) {
	q := tx.Table(table)
	if tx.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.UseIndex("idx_" + table + "_slug"))
	}
	q = q.Where("slug = ?", candidate)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("slug probe: %w", err)
	}
	return count > 0, nil
}
