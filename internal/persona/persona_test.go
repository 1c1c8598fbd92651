package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func agePtr(n int) *int {
	return &n
}

func TestAssembleToddlerBand(t *testing.T) {
	prompt := Assemble(agePtr(4))

	assert.True(t, strings.HasPrefix(prompt, BasePrompt))
	assert.Contains(t, prompt, ToddlerOverlay)
	assert.NotContains(t, prompt, ChildOverlay)
	assert.NotContains(t, prompt, YouthOverlay)
}

func TestAssembleChildBand(t *testing.T) {
	prompt := Assemble(agePtr(6))

	assert.Contains(t, prompt, ChildOverlay)
	assert.NotContains(t, prompt, ToddlerOverlay)
	assert.NotContains(t, prompt, YouthOverlay)
}

func TestAssembleYouthBand(t *testing.T) {
	prompt := Assemble(agePtr(11))

	assert.Contains(t, prompt, YouthOverlay)
	assert.NotContains(t, prompt, ChildOverlay)
}

func TestAssembleBandBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		age     int
		overlay string
	}{
		{"toddler lower bound", 2, ToddlerOverlay},
		{"toddler upper bound", 5, ToddlerOverlay},
		{"child lower bound", 6, ChildOverlay},
		{"child upper bound", 10, ChildOverlay},
		{"youth lower bound", 11, YouthOverlay},
		{"youth upper bound", 17, YouthOverlay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, Assemble(agePtr(tt.age)), tt.overlay)
		})
	}
}

func TestAssembleNoOverlay(t *testing.T) {
	assert.Equal(t, BasePrompt, Assemble(nil))
	assert.Equal(t, BasePrompt, Assemble(agePtr(1)))
	assert.Equal(t, BasePrompt, Assemble(agePtr(18)))
}

func TestBasePromptCarriesCrisisProtocol(t *testing.T) {
	for _, age := range []*int{nil, agePtr(3), agePtr(8), agePtr(15)} {
		prompt := Assemble(age)
		assert.Contains(t, prompt, "<crisis_response>")
		assert.Contains(t, prompt, "Crisis Text Line by texting HOME to 741741")
	}
}
