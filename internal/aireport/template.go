package aireport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soniva/backend/internal/voicetype"
)

// TemplateComposer renders a report without any hosted model. Output is
// deterministic for a given request so retried tasks produce identical rows.
type TemplateComposer struct{}

func NewTemplateComposer() *TemplateComposer {
	return &TemplateComposer{}
}

func (t *TemplateComposer) Name() string { return "template" }

var typePhrases = map[string]string{
	"loli":           "bright and impossibly youthful",
	"young_girl":     "fresh and full of morning energy",
	"mature_female":  "composed with an unmistakable elegance",
	"queen":          "commanding, the kind of voice a room goes quiet for",
	"soft_cute":      "soft around every edge",
	"gentle":         "warm and easy to listen to for hours",
	"sweet":          "sweet with a clear, ringing brightness",
	"intellectual":   "measured and quietly persuasive",
	"neutral":        "balanced, sitting comfortably between registers",
	"smoky":          "textured with a husky, late-night grain",
	"boy":            "light and boyishly bright",
	"teen":           "youthful with an eager, open tone",
	"young_male":     "clear and steady, classic leading-voice territory",
	"deep_mature":    "deep and unhurried, with real weight behind it",
	"dominant_young": "firm and confident, it leads every conversation",
	"soft_young":     "gentle and a little shy, in the best way",
	"puppy":          "warm and affectionate, instantly disarming",
	"wolfdog":        "low and intense, with a rough charm",
	"broadcast":      "polished and precise, built for the microphone",
}

var temperaturePhrases = map[string]string{
	voicetype.TemperatureWarm:    "a warm color",
	voicetype.TemperatureNeutral: "an even, natural color",
	voicetype.TemperatureCool:    "a cool, crisp color",
}

func (t *TemplateComposer) GenerateReport(_ context.Context, req Request) (*Report, error) {
	start := time.Now()

	main := req.Scores.Main()
	phrase, ok := typePhrases[main.Label]
	if !ok {
		phrase = "distinctive and hard to place"
	}

	name := req.Nickname
	if name == "" {
		name = "Your voice"
	} else {
		name = name + ", your voice"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is %s. It reads as a %s type with %.0f%% confidence",
		name, phrase, main.Label, main.Score)
	if tp, ok := temperaturePhrases[req.Attributes.Temperature]; ok {
		fmt.Fprintf(&b, ", carrying %s", tp)
	}
	b.WriteString(".\n\n")

	if len(req.Attributes.Tags) > 0 {
		fmt.Fprintf(&b, "Listeners will notice: %s.\n\n",
			strings.Join(req.Attributes.Tags, ", "))
	}

	fmt.Fprintf(&b, "Charm index: %.0f/100. ", req.Attributes.CharmIndex)
	switch {
	case req.Attributes.CharmIndex >= 75:
		b.WriteString("This is a voice made for streaming and late-night radio.")
	case req.Attributes.CharmIndex >= 50:
		b.WriteString("Great material for narration and voice messages.")
	default:
		b.WriteString("An honest, everyday voice that grows on people.")
	}

	return &Report{
		Content:   b.String(),
		Provider:  "template",
		Model:     "rule-based",
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
