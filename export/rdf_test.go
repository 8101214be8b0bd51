package export_test

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlog/export"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

func newDocument(t *testing.T, withEvent bool) *owl.Document {
	t.Helper()
	doc := owl.NewDocument(knowrob.DocumentConfig())

	md := owl.NewIndividual(doc.IndividualName("UnrealExperiment_ep1"))
	md.AddResource(knowrob.Type, knowrob.UnrealExperiment)
	md.AddLiteral(knowrob.Experiment, owl.StringLiteral("ep1"))
	md.AddResource(knowrob.StartTime, doc.RegisterTimepoint(0))

	if withEvent {
		a := doc.IndividualName("Cup_1")
		b := doc.IndividualName("Table_2")
		doc.RegisterObject(a, owl.NewResourceTriple(a, knowrob.Type, knowrob.ObjectClass("Cup")))
		doc.RegisterObject(b, owl.NewResourceTriple(b, knowrob.Type, knowrob.ObjectClass("Table")))

		ev := owl.NewIndividual(doc.IndividualName("TouchingSituation_aB3x"))
		ev.SetComment("Contact <Cup_1> -- Table_2")
		ev.AddResource(knowrob.Type, knowrob.TouchingSituation)
		ev.AddLiteral(knowrob.TaskContext, owl.StringLiteral("Contact-Cup_1-Table_2 & \"more\""))
		ev.AddResource(knowrob.StartTime, doc.RegisterTimepoint(0.3))
		ev.AddResource(knowrob.InContact, a)
		ev.AddResource(knowrob.InContact, b)
		ev.AddResource(knowrob.EndTime, doc.RegisterTimepoint(0.33))
		require.NoError(t, doc.AddIndividual(ev))
		md.AddResource(knowrob.SubAction, ev.Identity())
	}

	md.AddResource(knowrob.EndTime, doc.RegisterTimepoint(5))
	doc.SetMetadata(md)
	doc.Seal()
	return doc
}

// wellFormed decodes the whole document with the KnowRob entities declared.
func wellFormed(t *testing.T, out string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(out))
	dec.Entity = map[string]string{}
	for _, e := range knowrob.Entities() {
		dec.Entity[e.Prefix] = e.IRI
	}
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err)
	}
}

func TestSerializeRequiresSealedDocument(t *testing.T) {
	doc := owl.NewDocument(knowrob.DocumentConfig())
	_, err := export.Serialize(doc)
	assert.ErrorIs(t, err, export.ErrOpenIntervals)

	_, err = export.ExportAs(doc, export.FormatTurtle)
	assert.ErrorIs(t, err, export.ErrOpenIntervals)
}

func TestSerializeZeroEvents(t *testing.T) {
	out, err := export.Serialize(newDocument(t, false))
	require.NoError(t, err)
	wellFormed(t, out)

	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"utf-8\"?>"))
	assert.Contains(t, out, "<!ENTITY knowrob \"http://knowrob.org/kb/knowrob.owl#\">")
	assert.Contains(t, out, "xml:base=\"http://knowrob.org/kb/u_map.owl#\"")
	assert.Contains(t, out, "<owl:Ontology rdf:about=\"http://knowrob.org/kb/unreal_log.owl\">")
	assert.Contains(t, out, "<owl:imports rdf:resource=\"package://knowrob_common/owl/knowrob.owl\"/>")
	assert.Contains(t, out, "<owl:ObjectProperty rdf:about=\"&knowrob;taskContext\"/>")
	assert.Contains(t, out, "<owl:Class rdf:about=\"&knowrob_u;TouchingSituation\"/>")
	assert.Contains(t, out, "<owl:NamedIndividual rdf:about=\"&log;UnrealExperiment_ep1\">")
	assert.Contains(t, out, "<knowrob:experiment rdf:datatype=\"&xsd;string\">ep1</knowrob:experiment>")
	assert.Contains(t, out, "<owl:NamedIndividual rdf:about=\"&log;timepoint_5.0\">")
	assert.NotContains(t, out, "TouchingSituation_")
}

func TestSerializeOrderAndFacts(t *testing.T) {
	out, err := export.Serialize(newDocument(t, true))
	require.NoError(t, err)
	wellFormed(t, out)

	event := strings.Index(out, "rdf:about=\"&log;TouchingSituation_aB3x\"")
	object := strings.Index(out, "rdf:about=\"&log;Cup_1\"")
	timepoint := strings.Index(out, "rdf:about=\"&log;timepoint_0.3\"")
	metadata := strings.Index(out, "rdf:about=\"&log;UnrealExperiment_ep1\"")
	require.True(t, event > 0 && object > 0 && timepoint > 0 && metadata > 0)
	assert.Less(t, event, object)
	assert.Less(t, object, timepoint)
	assert.Less(t, timepoint, metadata)

	assert.Contains(t, out, "<knowrob_u:inContact rdf:resource=\"&log;Table_2\"/>")
	assert.Contains(t, out, "<rdf:type rdf:resource=\"&knowrob;Cup\"/>")
	assert.Contains(t, out, "<rdf:type rdf:resource=\"&knowrob;TimePoint\"/>")
	assert.Contains(t, out, "<knowrob:subAction rdf:resource=\"&log;TouchingSituation_aB3x\"/>")
	assert.Contains(t, out, "Contact-Cup_1-Table_2 &amp; &#34;more&#34;")
	assert.Contains(t, out, "<!-- Contact <Cup_1> - - Table_2 -->")
}

func TestSerializeDeterministic(t *testing.T) {
	doc := newDocument(t, true)
	first, err := export.Serialize(doc)
	require.NoError(t, err)
	second, err := export.Serialize(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var sb strings.Builder
	require.NoError(t, export.Write(&sb, doc))
	assert.Equal(t, first, sb.String())
}

func TestExportTurtle(t *testing.T) {
	out, err := export.ExportAs(newDocument(t, true), export.FormatTurtle)
	require.NoError(t, err)

	assert.Contains(t, out, "@prefix knowrob: <http://knowrob.org/kb/knowrob.owl#> .")
	assert.Contains(t, out, "<http://knowrob.org/kb/unreal_log.owl#TouchingSituation_aB3x>")
	assert.Contains(t, out, "<http://knowrob.org/kb/knowrob.owl#startTime> <http://knowrob.org/kb/unreal_log.owl#timepoint_0.3>")
	assert.Contains(t, out, "\"ep1\"^^xsd:string")
	assert.Contains(t, out, "\\\"more\\\"")
}

func TestExportNTriples(t *testing.T) {
	doc := newDocument(t, true)
	out, err := export.ExportAs(doc, export.FormatNTriples)
	require.NoError(t, err)

	facts := 0
	for _, ind := range doc.Individuals() {
		facts += len(ind.Facts())
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, facts)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, " ."), "line %q", line)
	}
	assert.Contains(t, out, "\"ep1\"^^<http://www.w3.org/2001/XMLSchema#string>")
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := export.ExportAs(newDocument(t, false), export.Format("jsonld"))
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}
