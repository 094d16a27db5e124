package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideSkip_GenericQuerySkipsBoth(t *testing.T) {
	d := DecideSkip(true, false, true, "מה יש לאכול")
	assert.True(t, d.SkipPostConstraints)
	assert.True(t, d.SkipBaseFilters)
}

func TestDecideSkip_GenericQueryWithKeywordRunsBaseFilters(t *testing.T) {
	d := DecideSkip(true, false, true, "restaurants open now near me")
	assert.True(t, d.SkipPostConstraints)
	assert.False(t, d.SkipBaseFilters)
}

func TestDecideSkip_ExplicitCityNeverSkips(t *testing.T) {
	d := DecideSkip(true, true, true, "מה יש לאכול")
	assert.False(t, d.SkipPostConstraints)
	assert.False(t, d.SkipBaseFilters)
}

func TestContainsFilterKeyword_MatchesAcrossLanguages(t *testing.T) {
	assert.True(t, ContainsFilterKeyword("restaurants open now"))
	assert.True(t, ContainsFilterKeyword("מסעדה זולה"))
	assert.False(t, ContainsFilterKeyword("pasta place"))
}
