package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegion_FixesKnownLLMConfusion(t *testing.T) {
	assert.Equal(t, "IL", validateRegion("IS"))
}

func TestValidateRegion_RejectsUnknownCode(t *testing.T) {
	assert.Equal(t, "", validateRegion("ZZ"))
}

func TestValidateRegion_AcceptsKnownCode(t *testing.T) {
	assert.Equal(t, "FR", validateRegion("fr"))
}
