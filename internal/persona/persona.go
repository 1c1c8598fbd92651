// Package persona assembles the system prompt sent as the first turn of
// every upstream conversation. The base prompt carries the shared safety
// and crisis protocol; an age-band overlay adapts tone and vocabulary.
package persona

// band maps an inclusive age range to its overlay text. Bands are tested
// in order; the first match wins and at most one overlay is applied.
type band struct {
	min, max int
	overlay  string
}

var bands = []band{
	{2, 5, ToddlerOverlay},
	{6, 10, ChildOverlay},
	{11, 17, YouthOverlay},
}

const overlaySeparator = "\n\n"

// Assemble returns the system prompt for the given age. A nil or
// out-of-range age yields the base prompt alone; this is not an error,
// the caller has already validated ages it cares about.
func Assemble(age *int) string {
	if age == nil {
		return BasePrompt
	}
	for _, b := range bands {
		if *age >= b.min && *age <= b.max {
			return BasePrompt + overlaySeparator + b.overlay
		}
	}
	return BasePrompt
}
