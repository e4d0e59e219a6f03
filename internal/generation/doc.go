// Package generation defines the boundary between the study pipeline and the
// external text generation service (Gemini).
//
// The Generator interface turns one prompt into generated text. Invoker wraps
// any Generator with call pacing (Pacer) and a retry Policy that backs off
// exponentially on transient errors such as quota exhaustion. Time is read and
// slept through the Clock interface so the behaviour can be tested without
// real delays.
package generation
