// Package query is the read side of the SDK. It fetches Event and Ticket
// entities from the chain registries, validates and normalizes them at the
// boundary (malformed entries are skipped, never fatal), and keeps keyed
// snapshots that the mutation layer can invalidate or patch optimistically.
package query
