// Package aggregate merges the committed answers of a completed session into
// one flat submission record and hands it to a transport collaborator.
//
// Build never mutates its input. Submitter calls the transport exactly once
// per Submit; retries, if any, belong to the transport itself.
package aggregate
