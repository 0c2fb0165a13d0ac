// Package state tracks per-user conversation progress. A session holds
// the current step of a multi-step flow plus a typed draft with the
// input collected so far; each flow declares its own draft type and
// recovers it with DraftAs.
package state
