// Package resolver is the find-or-create engine over a graph.
//
// Matching follows the graph's naming policy (exact names for dotless queries
// in the root partition, suffix matches everywhere else). A miss either
// reports ErrNotFound or creates a placeholder document, depending on the
// caller. Creation goes through graph.Update, so two concurrent finds for the
// same missing name create it once and the ordered list stays sorted.
package resolver
