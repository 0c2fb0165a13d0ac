// Package i18n provides the ru/en message catalog. Locales are YAML
// files embedded at build time; unknown keys fall back to Russian and
// finally to the key itself so a missing translation never panics.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLang is used for new users and as the fallback locale.
const DefaultLang = "ru"

var catalogs = mustLoad()

func mustLoad() map[string]map[string]string {
	out := make(map[string]map[string]string)
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		panic(fmt.Sprintf("i18n: read locales: %v", err))
	}
	for _, e := range entries {
		lang := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		raw, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			panic(fmt.Sprintf("i18n: read %s: %v", e.Name(), err))
		}
		msgs := make(map[string]string)
		if err := yaml.Unmarshal(raw, &msgs); err != nil {
			panic(fmt.Sprintf("i18n: parse %s: %v", e.Name(), err))
		}
		out[lang] = msgs
	}
	return out
}

// Supported reports whether a locale file exists for the language.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// T returns the message for key in the given language, formatted with
// args when provided.
func T(lang, key string, args ...any) string {
	msg := lookup(lang, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func lookup(lang, key string) string {
	if msgs, ok := catalogs[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if lang != DefaultLang {
		if msg, ok := catalogs[DefaultLang][key]; ok {
			return msg
		}
	}
	return key
}
