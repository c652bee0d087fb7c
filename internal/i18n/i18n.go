// i18n.go
//
// Conexo admin API: accounts, listings and moderation for the community directory
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of conexo-admin.
// conexo-admin is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// conexo-admin is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with conexo-admin.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is used when the client does not ask for a supported language
var DefaultLanguage = language.BrazilianPortuguese

// Bundle holds the message dictionaries for every supported language
type Bundle struct {
	tags     []language.Tag
	messages map[language.Tag]map[string]string
	matcher  language.Matcher
}

var (
	defaultBundle *Bundle
	defaultOnce   sync.Once
	defaultErr    error
)

// Default returns the bundle built from the embedded locale files
func Default() *Bundle {
	defaultOnce.Do(func() {
		defaultBundle, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("i18n: embedded locales are invalid: %v", defaultErr))
	}
	return defaultBundle
}

// Load parses the embedded locale files. The default language is always first.
func Load() (*Bundle, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		tags:     []language.Tag{DefaultLanguage},
		messages: make(map[language.Tag]map[string]string),
	}

	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: bad locale file name %q: %w", entry.Name(), err)
		}

		raw, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, err
		}
		dict := make(map[string]string)
		if err := json.Unmarshal(raw, &dict); err != nil {
			return nil, fmt.Errorf("i18n: %s: %w", entry.Name(), err)
		}

		b.messages[tag] = dict
		if tag != DefaultLanguage {
			b.tags = append(b.tags, tag)
		}
	}

	if _, ok := b.messages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("i18n: missing default locale %s", DefaultLanguage)
	}

	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Match resolves an Accept-Language header to a supported language
func (b *Bundle) Match(acceptLanguage string) language.Tag {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLanguage
	}
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return DefaultLanguage
	}
	_, index, confidence := b.matcher.Match(desired...)
	if confidence == language.No {
		return DefaultLanguage
	}
	return b.tags[index]
}

// T returns the message for key in lang, formatted with args.
// Unknown keys fall back to the default language and then to the key itself.
func (b *Bundle) T(lang language.Tag, key string, args ...any) string {
	msg, ok := b.messages[lang][key]
	if !ok {
		msg, ok = b.messages[DefaultLanguage][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Has reports whether the default dictionary defines key
func (b *Bundle) Has(key string) bool {
	_, ok := b.messages[DefaultLanguage][key]
	return ok
}
