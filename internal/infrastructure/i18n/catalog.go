// Package i18n resolves dashboard text keys to display strings.
// Values may reference parameters as {{name}}.
package i18n

import (
	"strings"
	"sync"
)

// DefaultLocale is the locale of the built-in messages.
const DefaultLocale = "en"

// Catalog is a set of messages for one locale, optionally backed by a
// fallback catalog. A key missing from every catalog resolves to itself.
type Catalog struct {
	mu       sync.RWMutex
	locale   string
	messages map[string]string
	fallback *Catalog
}

// New creates a catalog. messages is copied.
func New(locale string, messages map[string]string, fallback *Catalog) *Catalog {
	c := &Catalog{
		locale:   locale,
		messages: make(map[string]string, len(messages)),
		fallback: fallback,
	}
	for k, v := range messages {
		c.messages[k] = v
	}
	return c
}

// English returns a catalog with the built-in English messages.
func English() *Catalog {
	return New(DefaultLocale, englishMessages, nil)
}

// Locale returns the catalog locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// Set adds or replaces a message.
func (c *Catalog) Set(key, value string) {
	c.mu.Lock()
	c.messages[key] = value
	c.mu.Unlock()
}

// Lookup returns the raw message for key, consulting the fallback chain.
func (c *Catalog) Lookup(key string) (string, bool) {
	for cat := c; cat != nil; cat = cat.fallback {
		cat.mu.RLock()
		v, ok := cat.messages[key]
		cat.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return "", false
}

// Resolve returns the message for key with params interpolated.
// Unknown placeholders are left as they are.
func (c *Catalog) Resolve(key string, params map[string]string) string {
	msg, ok := c.Lookup(key)
	if !ok {
		return key
	}
	return interpolate(msg, params)
}

func interpolate(msg string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}

	var b strings.Builder
	b.Grow(len(msg))
	for {
		start := strings.Index(msg, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(msg[start:], "}}")
		if end < 0 {
			break
		}
		end += start

		name := strings.TrimSpace(msg[start+2 : end])
		b.WriteString(msg[:start])
		if v, ok := params[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(msg[start : end+2])
		}
		msg = msg[end+2:]
	}
	b.WriteString(msg)
	return b.String()
}
