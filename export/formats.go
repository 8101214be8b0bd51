package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/semlog/owl"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatRDFXML: {
		Name:        FormatRDFXML,
		MIMEType:    "application/rdf+xml",
		Extension:   ".owl",
		Description: "RDF/XML - OWL document with KnowRob entity declarations",
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, info := range FormatRegistry {
		if s == string(f) || s == info.Extension || "."+s == info.Extension {
			return f, nil
		}
	}
	switch s {
	case "xml", "rdf", "owl":
		return FormatRDFXML, nil
	case "ttl":
		return FormatTurtle, nil
	case "nt":
		return FormatNTriples, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a new Turtle writer with the given prefixes.
func NewTurtleWriter(ns owl.Namespaces) *TurtleWriter {
	w := &TurtleWriter{prefixes: make(map[string]string, len(ns))}
	for _, n := range ns {
		w.prefixes[n.Prefix] = n.IRI
	}
	return w
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, w.prefixes[prefix]))
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(iri string) {
	w.sb.WriteString(fmt.Sprintf("<%s>\n", iri))
}

// WritePredicate writes a predicate-object pair. object must already be a
// Turtle term.
func (w *TurtleWriter) WritePredicate(predicateIRI, object string, last bool) {
	terminator := " ;"
	if last {
		terminator = " ."
	}
	w.sb.WriteString(fmt.Sprintf("    <%s> %s%s\n", predicateIRI, object, terminator))
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple. object must already be an N-Triples
// term.
func (w *NTriplesWriter) WriteTriple(subject, predicate, object string) {
	w.sb.WriteString(fmt.Sprintf("<%s> <%s> %s .\n", subject, predicate, object))
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

func toTurtle(doc *owl.Document) string {
	ns := doc.Config().Entities
	w := NewTurtleWriter(ns)
	w.WritePrefixes()
	for _, ind := range doc.Individuals() {
		facts := ind.Facts()
		if len(facts) == 0 {
			continue
		}
		w.WriteSubject(ns.Resolve(ind.Identity()))
		for i, f := range facts {
			w.WritePredicate(ns.Resolve(f.Predicate()), formatObject(ns, f, true), i == len(facts)-1)
		}
		w.WriteBlank()
	}
	return w.String()
}

func toNTriples(doc *owl.Document) string {
	ns := doc.Config().Entities
	w := NewNTriplesWriter()
	for _, ind := range doc.Individuals() {
		subject := ns.Resolve(ind.Identity())
		for _, f := range ind.Facts() {
			w.WriteTriple(subject, ns.Resolve(f.Predicate()), formatObject(ns, f, false))
		}
	}
	return w.String()
}

// formatObject renders the object of a fact. Turtle output keeps the
// datatype as a prefixed name when its prefix is declared.
func formatObject(ns owl.Namespaces, f owl.Triple, turtle bool) string {
	lit, ok := f.Literal()
	if !ok {
		r, _ := f.Resource()
		return fmt.Sprintf("<%s>", ns.Resolve(r))
	}
	value := fmt.Sprintf("\"%s\"", escapeString(lit.Value))
	if lit.Datatype.IsZero() {
		return value
	}
	if _, declared := ns.Lookup(lit.Datatype.Prefix); turtle && declared {
		return value + "^^" + lit.Datatype.QName()
	}
	return fmt.Sprintf("%s^^<%s>", value, ns.Resolve(lit.Datatype))
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
