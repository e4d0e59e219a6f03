// Package mocks provides centralized mock implementations for testing.
//
// Mocks use function fields for custom behavior and plain fields for default
// return values, so a test only sets what it cares about:
//
//	gen := &mocks.MockGenerator{
//	    GenerateFn: func(ctx context.Context, prompt string) (string, error) {
//	        return "Q: What is a goroutine?\nA: A lightweight thread.", nil
//	    },
//	}
//
// FakeClock implements generation.Clock with virtual time so pacing and
// retry tests never sleep.
package mocks
