// Package session keeps the per-upload study state: the slides of one deck,
// what has been generated for them and the chat history.
//
// A session is created when a deck is uploaded and is identified by a UUID.
// Uploading the same bytes again keeps the session; uploading a different
// deck into it replaces the whole state. Idle sessions are removed by a
// cron-driven sweeper.
package session
