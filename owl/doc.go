// Package owl provides the triple and named-individual model used to build
// the OWL document of a logging episode.
//
// A Document owns an ordered list of event individuals, an ordered set of
// object individuals and an ordered set of timepoints, plus the fixed
// declarations (entities, namespaces, imports, property and class
// definitions) needed to render it. Rendering lives in the export package.
//
// Nothing in this package is safe for concurrent use; callers drive it from
// a single logical timeline.
package owl
