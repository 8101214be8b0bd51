// Package episode runs one logging episode: it feeds recorded signals into
// the event registry, the supported-by evaluators and the furniture
// classifier, and on Finalize seals the document and hands it to sinks.
//
// A Logger is safe for concurrent use. Everything below it is
// single-threaded and relies on the Logger's mutex.
package episode
