// Package cards defines the flashcard data model and the CSV formats used
// for base and enhanced decks.
package cards

// RawCard is the original flashcard data from a base CSV export.
type RawCard struct {
	// Front is the question side, typically in the learner's target language.
	Front string

	// Back is the answer side.
	Back string

	// DeckName is the full Anki deck path, e.g. "Italian::Verbs".
	DeckName string
}

// Example is the AI-generated sentence pair for one card: a natural example
// sentence in the front language and its translation in the back language.
type Example struct {
	SentenceFront string
	SentenceBack  string
}

// EnhancedCard combines the original card with its generated example.
type EnhancedCard struct {
	RawCard
	Example
}

// Enhance combines a raw card with its generated example.
func Enhance(card RawCard, example Example) EnhancedCard {
	return EnhancedCard{RawCard: card, Example: example}
}
