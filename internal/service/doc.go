// Package service contains the study use cases of the application.
//
// StudyService coordinates the session state (internal/session), prompt
// rendering (internal/prompt), text generation (internal/generation) and the
// shared content cache (internal/store) to produce slide analyses, flashcards
// and chat answers.
//
// Operations hold a session's lock only while they read or change slides
// and history. Generation runs with the lock released, and concurrent
// requests for the same slide, kind and style share one generation call,
// so reads and other slides proceed while a background deck analysis waits
// on the generator.
//
// Error Handling:
//   - Expected conditions are returned as sentinel errors (ErrSlideNotFound, ErrEmptyQuestion)
//   - Generation failures are wrapped in StudyServiceError and remain reachable via errors.Is
//   - A failed generation also leaves a user-safe message on the slide (Slide.LastError)
package service
