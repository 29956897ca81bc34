// Package types defines the Store interface, the board data model (items,
// buckets, slots), configuration, and the standard errors for the kanban
// storage engine.
//
// A Board is a list of buckets in ascending id order. Each bucket holds its
// items in position order; positions inside a bucket are always the dense
// run 0..N-1. Callers address a place on the board with a Slot.
package types
