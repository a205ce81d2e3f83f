package i18n

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/wellness"
)

func TestResolve_Interpolation(t *testing.T) {
	c := English()

	got := c.Resolve(wellness.KeyNextSessionWithCounsellor, map[string]string{
		"date":       "2025-04-02",
		"time":       "10:00",
		"counsellor": "Dr. Reyes",
	})
	assert.Equal(t, "2025-04-02 at 10:00 with Dr. Reyes", got)
}

func TestResolve_MissingKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "no.such.key", English().Resolve("no.such.key", nil))
}

func TestResolve_UnknownPlaceholderKept(t *testing.T) {
	c := New("en", map[string]string{"k": "Hi {{ name }}, {{other}}"}, nil)
	assert.Equal(t, "Hi Ada, {{other}}", c.Resolve("k", map[string]string{"name": "Ada"}))
	assert.Equal(t, "Hi {{ name }}, {{other}}", c.Resolve("k", nil))
}

func TestResolve_UnterminatedPlaceholder(t *testing.T) {
	c := New("en", map[string]string{"k": "a {{b} c"}, nil)
	assert.Equal(t, "a {{b} c", c.Resolve("k", map[string]string{"b": "x"}))
}

func TestFallbackChain(t *testing.T) {
	kk := New("kk", map[string]string{"mood.good": "Жақсы"}, English())

	assert.Equal(t, "Жақсы", kk.Resolve("mood.good", nil))
	assert.Equal(t, "Poor", kk.Resolve("mood.poor", nil))

	kk.Set("mood.poor", "Нашар")
	assert.Equal(t, "Нашар", kk.Resolve("mood.poor", nil))
	assert.Equal(t, "kk", kk.Locale())
}

func TestEnglish_CoversMoodKeys(t *testing.T) {
	c := English()
	for _, o := range mood.Options() {
		_, ok := c.Lookup(o.Label.TextKey())
		assert.True(t, ok, o.Label)
		_, ok = c.Lookup(o.Label.DescriptionKey())
		assert.True(t, ok, o.Label)

		keys, _ := mood.SuggestionKeys(o.Score)
		for _, k := range keys {
			_, ok := c.Lookup(k)
			assert.True(t, ok, k)
		}
	}
}

func TestEnglish_CoversWellnessKeys(t *testing.T) {
	c := English()
	for _, k := range []string{
		wellness.KeyNextSessionWithCounsellor,
		wellness.KeyNextSessionDefault,
		wellness.KeyLastSessionDefault,
		wellness.KeyDefaultCounsellor,
		wellness.KeySessionWith,
		wellness.KeyPromptLastCheckin,
		wellness.KeyPromptNoCheckin,
		"errors.loadFailed",
		"errors.timeout",
		"mood.checkinSuccess",
	} {
		_, ok := c.Lookup(k)
		assert.True(t, ok, fmt.Sprintf("missing %s", k))
	}
}
