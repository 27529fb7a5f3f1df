// Package history answers the two questions zennpub asks of version control:
// how many articles were auto-published recently, and when a file last changed.
//
// The Source interface keeps callers independent of git. GitSource reads the
// repository with go-git; Fake serves tests.
package history
