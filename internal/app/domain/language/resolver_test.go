package language

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shacharon/placesearch/internal/app/models"
)

func TestResolve_SearchLanguageIgnoresUIAndAssistant(t *testing.T) {
	base := Resolve(models.LangHebrew, models.LangEnglish, 0.9)
	mutatedUI := Resolve(models.LangEnglish, models.LangEnglish, 0.9)

	assert.Equal(t, base.SearchLanguage, mutatedUI.SearchLanguage)
	assert.Equal(t, models.LangEnglish, base.SearchLanguage)
}

func TestResolve_UnsupportedQueryLanguageFallsBackToEnglish(t *testing.T) {
	ctx := Resolve(models.LangHebrew, models.Language("de"), 0.95)
	assert.Equal(t, models.LangEnglish, ctx.SearchLanguage)
	assert.Equal(t, models.ProvenanceFallbackUnsupported, ctx.SearchProvenance)
}

func TestResolve_AssistantFallsBackOnLowConfidence(t *testing.T) {
	ctx := Resolve(models.LangHebrew, models.LangEnglish, 0.4)
	assert.Equal(t, models.LangHebrew, ctx.AssistantLanguage)
	assert.Equal(t, models.ProvenanceUILowConfidence, ctx.AssistantProvenance)
}

func TestValidate_RejectsBadProvenance(t *testing.T) {
	ctx := models.LanguageContext{SearchProvenance: "ui_influenced"}
	assert.False(t, Validate(ctx))
}
