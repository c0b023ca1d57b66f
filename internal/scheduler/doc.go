// Package scheduler drives the periodic fetch+write cycle.
//
// The loop is a small state machine: waiting for market open, actively
// polling, sleeping between updates, shutting down. All waits are
// interruptible by context cancellation; a cycle already in progress is
// allowed to finish its batch write so no update lands half-applied.
package scheduler
