// Package knowrob provides the KnowRob vocabulary used by semlog documents:
// namespaces, predicates, classes and the default document declarations.
//
// Predicates are registered with the semstreams vocabulary registry on
// import so graph consumers can resolve them:
//
//	import _ "github.com/c360studio/semlog/vocabulary/knowrob"
package knowrob
