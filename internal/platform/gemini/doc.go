// Package gemini provides an implementation of the generation.Generator interface
// that uses Google's Gemini API for producing study content from prompts.
//
// This package is an infrastructure adapter connecting the application's
// content pipeline to Google's external Gemini AI service. It does not retry
// or pace calls itself; that is the job of generation.Invoker. Instead it
// translates every outcome of a GenerateContent call into the error taxonomy
// of the generation package:
//
//   - HTTP 429 or RESOURCE_EXHAUSTED becomes generation.ErrQuotaExhausted
//   - a blocked prompt or a SAFETY finish reason becomes generation.ErrContentBlocked
//   - any other finish reason besides STOP becomes generation.ErrGenerationStopped
//   - a missing or empty answer becomes generation.ErrInvalidResponse
//   - everything else becomes generation.ErrGenerationFailed
//
// The package depends on the google.golang.org/genai client library.
package gemini
