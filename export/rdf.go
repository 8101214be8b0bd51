// Package export renders episode documents to RDF. RDF/XML with KnowRob
// entity declarations is the primary output; Turtle and N-Triples are
// available for graph tooling.
package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/semlog/owl"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatRDFXML produces RDF/XML (.owl) output.
	FormatRDFXML Format = "rdfxml"

	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"
)

// Serialize renders a finalized document as RDF/XML. The output is a pure
// function of the document, so repeated calls return identical text.
func Serialize(doc *owl.Document) (string, error) {
	if !doc.Sealed() {
		return "", ErrOpenIntervals
	}
	var sb strings.Builder
	writeRDFXML(&sb, doc)
	return sb.String(), nil
}

// Write serializes doc as RDF/XML to w.
func Write(w io.Writer, doc *owl.Document) error {
	out, err := Serialize(doc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// ExportAs serializes doc to the requested format.
func ExportAs(doc *owl.Document, format Format) (string, error) {
	if !doc.Sealed() {
		return "", ErrOpenIntervals
	}
	switch format {
	case FormatRDFXML:
		return Serialize(doc)
	case FormatTurtle:
		return toTurtle(doc), nil
	case FormatNTriples:
		return toNTriples(doc), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func writeRDFXML(sb *strings.Builder, doc *owl.Document) {
	cfg := doc.Config()

	sb.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n\n")

	sb.WriteString("<!DOCTYPE rdf:RDF [\n")
	for _, e := range cfg.Entities {
		fmt.Fprintf(sb, "\t<!ENTITY %s \"%s\">\n", e.Prefix, escape(e.IRI))
	}
	sb.WriteString("]>\n\n")

	sb.WriteString("<rdf:RDF")
	for _, n := range cfg.Namespaces {
		fmt.Fprintf(sb, "\n\txmlns:%s=\"%s\"", n.Prefix, escape(n.IRI))
	}
	if cfg.Base != "" {
		fmt.Fprintf(sb, "\n\txml:base=\"%s\"", escape(cfg.Base))
	}
	sb.WriteString(">\n\n")

	sb.WriteString("\t<!--Ontologies-->\n\n")
	fmt.Fprintf(sb, "\t<owl:Ontology rdf:about=\"%s\">\n", escape(cfg.Ontology))
	for _, imp := range cfg.Imports {
		fmt.Fprintf(sb, "\t\t<owl:imports rdf:resource=\"%s\"/>\n", escape(imp))
	}
	sb.WriteString("\t</owl:Ontology>\n\n")

	sb.WriteString("\t<!--Property Definitions-->\n\n")
	for _, p := range cfg.Properties {
		fmt.Fprintf(sb, "\t<owl:ObjectProperty rdf:about=\"%s\"/>\n", ref(p))
	}
	sb.WriteString("\n\t<!--Class Definitions-->\n\n")
	for _, c := range cfg.Classes {
		fmt.Fprintf(sb, "\t<owl:Class rdf:about=\"%s\"/>\n", ref(c))
	}

	writeSection(sb, "Event Individuals", doc.Events())
	writeSection(sb, "Object Individuals", doc.Objects())
	writeSection(sb, "Timepoint Individuals", doc.Timepoints())
	if md := doc.Metadata(); md != nil {
		writeSection(sb, "Metadata Individual", []*owl.NamedIndividual{md})
	}

	sb.WriteString("\n</rdf:RDF>\n")
}

func writeSection(sb *strings.Builder, title string, inds []*owl.NamedIndividual) {
	fmt.Fprintf(sb, "\n\t<!--%s-->\n", title)
	for _, ind := range inds {
		sb.WriteString("\n")
		writeIndividual(sb, ind)
	}
}

func writeIndividual(sb *strings.Builder, ind *owl.NamedIndividual) {
	if c := ind.Comment(); c != "" {
		fmt.Fprintf(sb, "\t<!-- %s -->\n", commentText(c))
	}
	fmt.Fprintf(sb, "\t<owl:NamedIndividual rdf:about=\"%s\">\n", ref(ind.Identity()))
	for _, f := range ind.Facts() {
		pred := f.Predicate().QName()
		if lit, ok := f.Literal(); ok {
			fmt.Fprintf(sb, "\t\t<%s rdf:datatype=\"%s\">%s</%s>\n", pred, ref(lit.Datatype), escape(lit.Value), pred)
			continue
		}
		r, _ := f.Resource()
		fmt.Fprintf(sb, "\t\t<%s rdf:resource=\"%s\"/>\n", pred, ref(r))
	}
	sb.WriteString("\t</owl:NamedIndividual>\n")
}

// ref renders a name for rdf:about, rdf:resource and rdf:datatype
// attributes. Entity references are kept unescaped so the DOCTYPE
// declarations expand them.
func ref(n owl.PrefixedName) string {
	if n.Prefix == "" {
		return escape(n.Local)
	}
	return "&" + n.Prefix + ";" + escape(n.Local)
}

func escape(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}

// commentText keeps comments well-formed: "--" is not allowed inside.
func commentText(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	return strings.TrimSuffix(s, "-")
}
