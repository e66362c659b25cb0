package analysis

// Mode selects how input concepts fan out into pipeline runs.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeRepeat Mode = "repeat"
	ModeBatch  Mode = "batch"
)

// Variant labels
const (
	VariantOriginal = "original"
	VariantB2B      = "B2B"
	VariantB2C      = "B2C"
)

// audienceRewrites is the fixed axis -> replacement table used by repeat
// mode. Expansion is pure and deterministic so it is testable without the
// generative service.
var audienceRewrites = []struct {
	Variant string
	Suffix  string
}{
	{VariantB2B, " for B2B teams"},
	{VariantB2C, " for B2C consumers"},
}

// Expand derives the ordered variant set for one concept. Repeat mode always
// yields the unmodified original first, then the templated rewrites. Single
// and batch modes pass the concept through unchanged.
func Expand(c Concept, mode Mode) []Concept {
	if mode != ModeRepeat {
		return []Concept{c}
	}
	out := make([]Concept, 0, 1+len(audienceRewrites))
	out = append(out, Concept{Text: c.Text, Variant: VariantOriginal})
	for _, rw := range audienceRewrites {
		out = append(out, Concept{Text: c.Text + rw.Suffix, Variant: rw.Variant})
	}
	return out
}

// ExpandAll applies Expand to each input concept, preserving input order.
func ExpandAll(concepts []Concept, mode Mode) []Concept {
	var out []Concept
	for _, c := range concepts {
		out = append(out, Expand(c, mode)...)
	}
	return out
}
