// Package state persists the verifier's bookkeeping between runs: the retry
// queue of articles that need rescheduling and the failure log that backs the
// publisher's cooldown.
//
// Both files are read fully at the start of a run and rewritten atomically at
// the end. A run lock taken with AcquireLock keeps two invocations from
// interleaving those rewrites.
package state
