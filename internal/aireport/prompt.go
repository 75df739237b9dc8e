package aireport

import (
	"fmt"
	"sort"
	"strings"
)

const systemPrompt = `You are a voice analyst writing playful, flattering voice reports for a social app.
Write 3 short paragraphs in the second person. Mention the main voice type, the standout
acoustic traits you are given, and one suggestion for how to use the voice (singing,
narration, streaming). Never mention numbers or measurement names directly. Keep it under
150 words.`

// buildUserPrompt renders the analysis into a compact prompt. Undetermined
// measurements are simply omitted.
func buildUserPrompt(req Request) string {
	var b strings.Builder

	name := req.Nickname
	if name == "" {
		name = "the user"
	}
	main := req.Scores.Main()
	fmt.Fprintf(&b, "Nickname: %s\nGender: %s\nMain voice type: %s (confidence %.0f/100)\n",
		name, req.Gender, main.Label, main.Score)

	entries := append(req.Scores.Entries[:0:0], req.Scores.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	var alts []string
	for _, e := range entries {
		if e.Label == main.Label || e.Score <= 0 {
			continue
		}
		alts = append(alts, fmt.Sprintf("%s (%.0f)", e.Label, e.Score))
		if len(alts) == 2 {
			break
		}
	}
	if len(alts) > 0 {
		fmt.Fprintf(&b, "Secondary types: %s\n", strings.Join(alts, ", "))
	}

	fv := req.Features
	if fv.F0.Mean.Determined {
		fmt.Fprintf(&b, "Pitch: %.0f Hz mean", fv.F0.Mean.Value)
		if fv.F0.Stability.Determined {
			fmt.Fprintf(&b, ", stability %.2f", fv.F0.Stability.Value)
		}
		b.WriteString("\n")
	}
	if fv.SpectralCentroid.Determined {
		fmt.Fprintf(&b, "Brightness: %.0f Hz spectral centroid\n", fv.SpectralCentroid.Value)
	}
	if fv.HarmonicRatio.Determined {
		fmt.Fprintf(&b, "Tone purity: %.2f harmonic ratio\n", fv.HarmonicRatio.Value)
	}
	fmt.Fprintf(&b, "Energy: %.3f mean RMS\n", fv.RMSMean)

	a := req.Attributes
	fmt.Fprintf(&b, "Perceived: temperature=%s attribute=%s charm=%.0f/100",
		a.Temperature, a.Attribute, a.CharmIndex)
	if a.PerceivedAge > 0 {
		fmt.Fprintf(&b, " age=%d height=%dcm", a.PerceivedAge, a.PerceivedHeight)
	}
	b.WriteString("\n")
	if len(a.Tags) > 0 {
		fmt.Fprintf(&b, "Traits: %s\n", strings.Join(a.Tags, ", "))
	}

	return b.String()
}
