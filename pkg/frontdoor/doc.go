// Package frontdoor is the entry point for user utterances.
//
// It sanitizes input, serializes turns per user, attaches recent history,
// registers a session with the coordinator and waits for its outcome.
package frontdoor
