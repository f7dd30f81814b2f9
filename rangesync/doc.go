// Package rangesync implements range-based set reconciliation between two
// parties that each hold a set of (timestamp, id) records.
//
// One side drives the exchange as the initiator and accumulates the two
// output sets, HAVE (present locally, missing remotely) and NEED (present
// remotely, missing locally); the other side, the responder, only answers
// with refinement messages. Both roles are the same Reconciler type; calling
// Initiate makes a Reconciler the initiator, and one on which Initiate has
// not been called acts as the responder.
//
// The package is transport-agnostic: Reconciler never performs I/O. Callers
// pass and receive opaque frames ([]byte) and are responsible for getting
// them to the peer.
package rangesync
