package mood

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFIER TABLE
// Continuous score ranges. Used for emoji assignment at creation time and for
// label lookup of historical entries.
// ══════════════════════════════════════════════════════════════════════════════

// Label identifies a mood bucket.
type Label string

const (
	LabelExcellent Label = "excellent"
	LabelGood      Label = "good"
	LabelOkay      Label = "okay"
	LabelNotGreat  Label = "notGreat"
	LabelPoor      Label = "poor"
)

// TextKey returns the text resolution key of the label.
func (l Label) TextKey() string {
	return "mood." + string(l)
}

// DescriptionKey returns the text resolution key of the label description.
func (l Label) DescriptionKey() string {
	return "mood." + string(l) + "Desc"
}

// Classification is the label/emoji pair for a score.
type Classification struct {
	Label Label  `json:"label"`
	Emoji string `json:"emoji"`
}

type band struct {
	min   int
	class Classification
}

// classifierBands is ordered by descending lower bound.
var classifierBands = []band{
	{min: 80, class: Classification{Label: LabelExcellent, Emoji: "😊"}},
	{min: 60, class: Classification{Label: LabelGood, Emoji: "🙂"}},
	{min: 40, class: Classification{Label: LabelOkay, Emoji: "😐"}},
	{min: 20, class: Classification{Label: LabelNotGreat, Emoji: "😕"}},
}

var poor = Classification{Label: LabelPoor, Emoji: "😢"}

// Classify maps a score to exactly one classification.
// Scores outside [0,100] are clamped into the nearest band.
func Classify(score int) Classification {
	for _, b := range classifierBands {
		if score >= b.min {
			return b.class
		}
	}
	return poor
}

// EmojiFor returns the emoji for a score.
func EmojiFor(score int) string {
	return Classify(score).Emoji
}

// ══════════════════════════════════════════════════════════════════════════════
// SUGGESTION ANCHORS
// Discrete scores offered by the input UI. Suggestions are keyed by these
// anchors, not by the classifier ranges above; keep the two tables apart.
// ══════════════════════════════════════════════════════════════════════════════

// SuggestionsPerAnchor is the number of coping suggestions for each anchor.
const SuggestionsPerAnchor = 3

// Option is a selectable mood in the check-in form.
type Option struct {
	ID    int    `json:"id"`
	Score int    `json:"score"`
	Emoji string `json:"emoji"`
	Label Label  `json:"label"`
}

var suggestionAnchors = []Option{
	{ID: 1, Score: 90, Emoji: "😊", Label: LabelExcellent},
	{ID: 2, Score: 70, Emoji: "🙂", Label: LabelGood},
	{ID: 3, Score: 50, Emoji: "😐", Label: LabelOkay},
	{ID: 4, Score: 30, Emoji: "😕", Label: LabelNotGreat},
	{ID: 5, Score: 10, Emoji: "😢", Label: LabelPoor},
}

// Options returns the selectable anchors, best mood first.
func Options() []Option {
	out := make([]Option, len(suggestionAnchors))
	copy(out, suggestionAnchors)
	return out
}

// OptionFor returns the anchor with exactly the given score.
func OptionFor(score int) (Option, bool) {
	for _, o := range suggestionAnchors {
		if o.Score == score {
			return o, true
		}
	}
	return Option{}, false
}

// SuggestionKeys returns the text keys of the coping suggestions for an
// anchor score. Non-anchor scores have no suggestions.
func SuggestionKeys(anchor int) ([]string, bool) {
	if _, ok := OptionFor(anchor); !ok {
		return nil, false
	}
	keys := make([]string, SuggestionsPerAnchor)
	for i := range keys {
		keys[i] = fmt.Sprintf("moodSuggestions.%d.%d", anchor, i)
	}
	return keys, true
}
