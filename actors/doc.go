// Package actors implements the concurrent execution core of the
// runtime: turn-based actors with strictly serialized mailboxes,
// one-shot promises with dependent-message pipelining, and the
// shared worker pool that backs actor execution.
package actors
