// Package filter implements the pruning passes of docsift: the verbosity
// filter, the tag filter and the compound filter that chains both per
// content node.
//
// A content node is a mapping holding the effective content key together
// with the key the pass decides on (verbosity or tags). Content nodes that
// fail the decision are pruned; survivors keep their sibling metadata and
// only their content value is filtered further. Every other mapping and
// sequence is a plain container and is traversed value by value.
//
// Key names may be overridden per subtree through an embedded
// configuration mapping, see package scope.
package filter
