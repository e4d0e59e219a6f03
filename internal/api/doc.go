// Package api exposes the study session over HTTP. It decodes and validates
// requests, resolves the caller's session from its token, calls the study
// service and maps domain and generation errors to status codes and safe
// messages.
package api
