package export_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlog/export"
	"github.com/c360studio/semlog/owl"
)

func TestGetFormatInfo(t *testing.T) {
	tests := []struct {
		format    export.Format
		mime      string
		extension string
	}{
		{export.FormatRDFXML, "application/rdf+xml", ".owl"},
		{export.FormatTurtle, "text/turtle", ".ttl"},
		{export.FormatNTriples, "application/n-triples", ".nt"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			info, ok := export.GetFormatInfo(tt.format)
			require.True(t, ok)
			assert.Equal(t, tt.mime, info.MIMEType)
			assert.Equal(t, tt.extension, info.Extension)
		})
	}

	_, ok := export.GetFormatInfo("unknown")
	assert.False(t, ok)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]export.Format{
		"rdfxml":   export.FormatRDFXML,
		"owl":      export.FormatRDFXML,
		".owl":     export.FormatRDFXML,
		"Turtle":   export.FormatTurtle,
		"ttl":      export.FormatTurtle,
		"nt":       export.FormatNTriples,
		"ntriples": export.FormatNTriples,
	}
	for in, want := range tests {
		got, err := export.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := export.ParseFormat("yaml")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestTurtleWriterSortsPrefixes(t *testing.T) {
	w := export.NewTurtleWriter(owl.Namespaces{
		{Prefix: "xsd", IRI: "http://www.w3.org/2001/XMLSchema#"},
		{Prefix: "log", IRI: "http://knowrob.org/kb/unreal_log.owl#"},
	})
	w.SetPrefix("a", "http://example.org/")
	w.WritePrefixes()
	w.WriteSubject("http://example.org/s")
	w.WritePredicate("http://example.org/p", "\"v\"", true)

	assert.Equal(t,
		"@prefix a: <http://example.org/> .\n"+
			"@prefix log: <http://knowrob.org/kb/unreal_log.owl#> .\n"+
			"@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .\n\n"+
			"<http://example.org/s>\n"+
			"    <http://example.org/p> \"v\" .\n",
		w.String())
}

func TestNTriplesWriter(t *testing.T) {
	w := export.NewNTriplesWriter()
	w.WriteTriple("http://example.org/s", "http://example.org/p", "<http://example.org/o>")
	assert.Equal(t, "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n", w.String())
}
