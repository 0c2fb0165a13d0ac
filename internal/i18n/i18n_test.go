package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedLocales(t *testing.T) {
	assert.True(t, Supported("ru"))
	assert.True(t, Supported("en"))
	assert.False(t, Supported("de"))
}

func TestTranslateWithArgs(t *testing.T) {
	got := T("en", "id.reply", int64(42))
	assert.Equal(t, "Your ID: 42", got)

	got = T("ru", "deal.sent", int64(7), "12.5", "TON")
	assert.Contains(t, got, "№7")
	assert.Contains(t, got, "12.5")
}

func TestFallbackToDefaultLang(t *testing.T) {
	// unknown language falls back to Russian
	assert.Equal(t, T("ru", "btn.profile"), T("de", "btn.profile"))
	// unknown key falls back to the key itself
	assert.Equal(t, "no.such.key", T("en", "no.such.key"))
}

func TestCatalogsCoverSameKeys(t *testing.T) {
	ru, en := catalogs["ru"], catalogs["en"]
	for key := range ru {
		if _, ok := en[key]; !ok {
			t.Errorf("key %q missing from en", key)
		}
	}
	for key := range en {
		if _, ok := ru[key]; !ok {
			t.Errorf("key %q missing from ru", key)
		}
	}
}

func TestNoUnbalancedPlaceholders(t *testing.T) {
	for lang, msgs := range catalogs {
		for key, ru := range msgs {
			other := lookup(otherLang(lang), key)
			if strings.Count(ru, "%") != strings.Count(other, "%") {
				t.Errorf("placeholder mismatch for %s in %s", key, lang)
			}
		}
	}
}

func otherLang(lang string) string {
	if lang == "ru" {
		return "en"
	}
	return "ru"
}
