// Package domain contains the core entities of a study session: slides
// extracted from an uploaded deck, the flashcards and analysis generated for
// them, and the chat exchanges grounded in the deck. It is independent of any
// specific infrastructure or delivery mechanism.
package domain
