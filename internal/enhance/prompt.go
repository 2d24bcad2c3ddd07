package enhance

import (
	"fmt"

	"github.com/rshade/cardforge/internal/cards"
)

// Instructions is the system message sent with every enhancement request.
const Instructions = "You are a language learning assistant. Generate natural, contextually " +
	"appropriate example sentences for flashcard vocabulary and phrases."

// BuildPrompt constructs the per-card user prompt.
func BuildPrompt(card cards.RawCard) string {
	return fmt.Sprintf(`Create example sentences for this flashcard:

Front (question): %s
Back (answer): %s

The front is in one language and the back is in another.
Generate a natural example sentence in the front language that uses the concept,
and its translation in the back language.`, card.Front, card.Back)
}
