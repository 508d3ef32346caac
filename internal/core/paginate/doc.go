// Package paginate walks a paged search until the remote signals exhaustion and counts what it saw.
//
// The filter payload is opaque here. Each page request is a fresh value built from the immutable
// Query plus the current PageState, so nothing is mutated between iterations. A failure on any
// page fails the whole aggregation; there is no partial total and no retry.
//
// Two strategies are supported:
//
//   - cursor: each page carries a continuation token, the walk ends when it comes back empty
//   - offset: the walk advances by the page size and ends on the first short page
//
// Walks are bounded by Limits so a remote that never signals exhaustion cannot spin forever.
package paginate
