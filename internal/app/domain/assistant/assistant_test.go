package assistant

import (
	"testing"

	"github.com/shacharon/placesearch/internal/app/models"
)

func TestValid_RejectsLanguageMismatch(t *testing.T) {
	msg := Message{Message: "hello.", Language: models.LangEnglish}
	if valid(msg, models.LangHebrew) {
		t.Fatal("expected language mismatch to fail validation")
	}
}

func TestValid_RejectsQuestionMarkWithoutQuestionField(t *testing.T) {
	msg := Message{Message: "Where do you want to eat?", Language: models.LangEnglish}
	if valid(msg, models.LangEnglish) {
		t.Fatal("expected bare question mark to fail validation")
	}
}

func TestValid_AcceptsQuestionMarkWithQuestionField(t *testing.T) {
	msg := Message{Message: "Let's narrow it down?", Question: "which area?", Language: models.LangEnglish}
	if !valid(msg, models.LangEnglish) {
		t.Fatal("expected question with Question field set to validate")
	}
}

func TestValid_RejectsTooManySentences(t *testing.T) {
	msg := Message{Message: "One. Two. Three. Four.", Language: models.LangEnglish}
	if valid(msg, models.LangEnglish) {
		t.Fatal("expected sentence-count cap to reject 4 sentences")
	}
}

func TestFallback_ForcesBlocksSearchByContext(t *testing.T) {
	clarify := fallback(ContextClarify, models.LangEnglish)
	if !clarify.BlocksSearch {
		t.Fatal("expected CLARIFY to force blocksSearch=true")
	}
	summary := fallback(ContextSummary, models.LangEnglish)
	if summary.BlocksSearch {
		t.Fatal("expected SUMMARY to force blocksSearch=false")
	}
}
