package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse is returned when the model response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrQuotaExhausted is returned when the API rejects a call because the
	// request quota or rate limit has been reached
	ErrQuotaExhausted = errors.New("language model quota exhausted")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrGenerationStopped is returned when the model stops before finishing its answer
	ErrGenerationStopped = errors.New("language model stopped generating early")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrRetryDeadlineExceeded is returned when retryable errors kept occurring
	// until the retry deadline ran out. It wraps the last underlying error.
	ErrRetryDeadlineExceeded = errors.New("retry deadline exceeded")
)

// IsRetryable reports whether err is a transient generation error that is
// worth retrying after a backoff delay.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrQuotaExhausted) ||
		errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrGenerationStopped)
}
