package query

import (
	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/wellness"
)

// MoodOptionDTO is a selectable mood with its resolved texts.
type MoodOptionDTO struct {
	mood.Option
	LabelText   string   `json:"labelText"`
	Description string   `json:"description"`
	Suggestions []string `json:"suggestions"`
}

// GetMoodOptionsHandler lists the selectable moods of the check-in form.
type GetMoodOptionsHandler struct {
	resolver wellness.TextResolver
}

// NewGetMoodOptionsHandler creates a GetMoodOptionsHandler.
func NewGetMoodOptionsHandler(resolver wellness.TextResolver) *GetMoodOptionsHandler {
	if resolver == nil {
		resolver = wellness.KeyResolver
	}
	return &GetMoodOptionsHandler{resolver: resolver}
}

// Handle returns the options, best mood first.
func (h *GetMoodOptionsHandler) Handle() []MoodOptionDTO {
	opts := mood.Options()
	out := make([]MoodOptionDTO, 0, len(opts))
	for _, o := range opts {
		keys, _ := mood.SuggestionKeys(o.Score)
		suggestions := make([]string, 0, len(keys))
		for _, k := range keys {
			suggestions = append(suggestions, h.resolver.Resolve(k, nil))
		}
		out = append(out, MoodOptionDTO{
			Option:      o,
			LabelText:   h.resolver.Resolve(o.Label.TextKey(), nil),
			Description: h.resolver.Resolve(o.Label.DescriptionKey(), nil),
			Suggestions: suggestions,
		})
	}
	return out
}
