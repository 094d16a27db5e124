// Package assistant implements the deferred Assistant (spec §4.O): a short
// natural-language message, validated against a strict schema, with a
// deterministic templated fallback per language on any failure.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
)

// Context names which of the five generation contexts the message is for.
type Context string

const (
	ContextGateFail               Context = "GATE_FAIL"
	ContextClarify                Context = "CLARIFY"
	ContextSummary                Context = "SUMMARY"
	ContextSearchFailed           Context = "SEARCH_FAILED"
	ContextGenericQueryNarration  Context = "GENERIC_QUERY_NARRATION"
)

// maxSentences bounds the generated message length.
const maxSentences = 3

// forcedBlocksSearch pins blocksSearch per context, overriding whatever the
// LLM itself returned.
var forcedBlocksSearch = map[Context]bool{
	ContextGateFail:              true,
	ContextClarify:               true,
	ContextSummary:               false,
	ContextSearchFailed:          true,
	ContextGenericQueryNarration: false,
}

// Message is the validated Assistant output, delivered only over the
// WebSocket channel.
type Message struct {
	Type         Context         `json:"type"`
	Message      string          `json:"message"`
	Question     string          `json:"question,omitempty"`
	BlocksSearch bool            `json:"blocksSearch"`
	Language     models.Language `json:"language"`
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"message":  {Type: genai.TypeString},
		"question": {Type: genai.TypeString},
		"language": {Type: genai.TypeString},
	},
	Required: []string{"message", "language"},
}

type rawMessage struct {
	Message  string `json:"message"`
	Question string `json:"question"`
	Language string `json:"language"`
}

// Stage generates Assistant messages.
type Stage struct {
	client *llm.Client
}

// New builds a Stage.
func New(client *llm.Client) *Stage {
	return &Stage{client: client}
}

// Generate produces a validated Message for context, in assistantLanguage.
// On any LLM error or schema-validation failure it returns the deterministic
// templated fallback instead — generation never fails outright.
func (s *Stage) Generate(ctx context.Context, genCtx Context, assistantLanguage models.Language, queryText string) Message {
	var out rawMessage
	prompt := fmt.Sprintf("Write a short %s message in language %q for this restaurant search: %q", genCtx, assistantLanguage, queryText)
	if err := s.client.Generate(ctx, prompt, responseSchema, &out); err != nil {
		return fallback(genCtx, assistantLanguage)
	}

	msg := Message{
		Type:         genCtx,
		Message:      out.Message,
		Question:     out.Question,
		BlocksSearch: forcedBlocksSearch[genCtx],
		Language:     models.Language(out.Language),
	}
	if !valid(msg, assistantLanguage) {
		return fallback(genCtx, assistantLanguage)
	}
	return msg
}

// valid implements the strict schema: language must match, sentence count
// must be bounded, and a question mark is only allowed when Question is set.
func valid(msg Message, assistantLanguage models.Language) bool {
	if msg.Language != assistantLanguage {
		return false
	}
	if sentenceCount(msg.Message) > maxSentences {
		return false
	}
	if strings.Contains(msg.Message, "?") && msg.Question == "" {
		return false
	}
	return true
}

func sentenceCount(s string) int {
	count := 0
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	if count == 0 && strings.TrimSpace(s) != "" {
		return 1
	}
	return count
}

// fallback returns a deterministic templated message per context and
// language, used whenever LLM generation or validation fails.
func fallback(genCtx Context, lang models.Language) Message {
	return Message{
		Type:         genCtx,
		Message:      fallbackTemplates[genCtx][lang],
		BlocksSearch: forcedBlocksSearch[genCtx],
		Language:     lang,
	}
}

var fallbackTemplates = map[Context]map[models.Language]string{
	ContextGateFail: {
		models.LangEnglish: "This doesn't look like a restaurant search. Try asking about a place to eat.",
		models.LangHebrew:  "זה לא נראה כמו חיפוש מסעדות. נסו לשאול על מקום לאכול בו.",
		models.LangSpanish: "Esto no parece una búsqueda de restaurantes. Intenta preguntar por un lugar para comer.",
		models.LangRussian: "Это не похоже на поиск ресторана. Попробуйте спросить о месте, где поесть.",
		models.LangArabic:  "هذا لا يبدو وكأنه بحث عن مطعم. حاول السؤال عن مكان لتناول الطعام.",
		models.LangFrench:  "Cela ne ressemble pas à une recherche de restaurant. Essayez de demander un endroit où manger.",
	},
	ContextClarify: {
		models.LangEnglish: "Could you tell me which area or cuisine you're looking for?",
		models.LangHebrew:  "תוכלו לציין אזור או סוג מטבח שתרצו לחפש?",
		models.LangSpanish: "¿Podrías decirme qué zona o tipo de cocina buscas?",
		models.LangRussian: "Не могли бы вы уточнить район или кухню, которую вы ищете?",
		models.LangArabic:  "هل يمكنك إخباري بالمنطقة أو نوع المطبخ الذي تبحث عنه؟",
		models.LangFrench:  "Pouvez-vous préciser la zone ou le type de cuisine recherché ?",
	},
	ContextSummary: {
		models.LangEnglish: "Here are some places that match your search.",
		models.LangHebrew:  "הנה כמה מקומות שתואמים לחיפוש שלך.",
		models.LangSpanish: "Aquí tienes algunos lugares que coinciden con tu búsqueda.",
		models.LangRussian: "Вот несколько мест, подходящих под ваш запрос.",
		models.LangArabic:  "إليك بعض الأماكن التي تطابق بحثك.",
		models.LangFrench:  "Voici quelques endroits correspondant à votre recherche.",
	},
	ContextSearchFailed: {
		models.LangEnglish: "The search couldn't be completed right now. Please try again.",
		models.LangHebrew:  "לא הצלחנו להשלים את החיפוש כרגע. נסו שוב.",
		models.LangSpanish: "No se pudo completar la búsqueda en este momento. Inténtalo de nuevo.",
		models.LangRussian: "Не удалось выполнить поиск сейчас. Попробуйте еще раз.",
		models.LangArabic:  "تعذر إكمال البحث الآن. يرجى المحاولة مرة أخرى.",
		models.LangFrench:  "La recherche n'a pas pu aboutir pour le moment. Veuillez réessayer.",
	},
	ContextGenericQueryNarration: {
		models.LangEnglish: "Showing nearby places to eat.",
		models.LangHebrew:  "מציג מקומות לאכול בקרבת מקום.",
		models.LangSpanish: "Mostrando lugares cercanos para comer.",
		models.LangRussian: "Показаны ближайшие места, где можно поесть.",
		models.LangArabic:  "عرض الأماكن القريبة لتناول الطعام.",
		models.LangFrench:  "Affichage des lieux à proximité pour manger.",
	},
}
