package knowrob

import (
	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/semlog/owl"
)

// Structural predicates.
var (
	// Type is the class assertion predicate.
	Type = owl.Name(PrefixRDF, "type")
)

// Event predicates.
var (
	// TaskContext is the human readable description of an event.
	TaskContext = owl.Name(PrefixKnowRob, "taskContext")

	// TaskSuccess marks whether the task of an event succeeded.
	TaskSuccess = owl.Name(PrefixKnowRob, "taskSuccess")

	// OutputsCreated links an event to the objects it created (slices).
	OutputsCreated = owl.Name(PrefixKnowRob, "outputsCreated")

	// GraspType names the grasp used by a grasping event.
	GraspType = owl.Name(PrefixKnowRob, "graspType")

	// StartTime links an event to its start timepoint.
	StartTime = owl.Name(PrefixKnowRob, "startTime")

	// EndTime links an event to its end timepoint.
	EndTime = owl.Name(PrefixKnowRob, "endTime")

	// Experiment is the episode tag literal on the metadata individual.
	Experiment = owl.Name(PrefixKnowRob, "experiment")

	// SubAction links the episode to each of its closed events.
	SubAction = owl.Name(PrefixKnowRob, "subAction")

	// InEpisode links an object to the episode that observed it.
	InEpisode = owl.Name(PrefixKnowRob, "inEpisode")
)

// Role predicates bind event participants.
var (
	InContact     = owl.Name(PrefixKnowRobU, "inContact")
	PerformedBy   = owl.Name(PrefixKnowRob, "performedBy")
	ObjectActedOn = owl.Name(PrefixKnowRob, "objectActedOn")
	DeviceUsed    = owl.Name(PrefixKnowRob, "deviceUsed")
	IsSupported   = owl.Name(PrefixKnowRob, "isSupported")
	IsSupporting  = owl.Name(PrefixKnowRob, "isSupporting")
)

// Map predicates.
var (
	// SemanticMap links the episode to the semantic map it ran in.
	SemanticMap = owl.Name(PrefixKnowRobU, "semanticMap")

	// DescribedInMap links an object to the semantic map describing it.
	DescribedInMap = owl.Name(PrefixKnowRob, "describedInMap")
)

type predicateDef struct {
	name        owl.PrefixedName
	key         string
	description string
	dataType    string
	iri         string
	declare     bool
}

// predicates lists every predicate with its dotted graph key. Order is the
// declaration order in rendered documents.
var predicates = []predicateDef{
	{TaskContext, "knowrob.event.task_context", "Human readable context of an event", "string", KnowRobNamespace + "taskContext", true},
	{TaskSuccess, "knowrob.event.task_success", "Whether the task of the event succeeded", "bool", KnowRobNamespace + "taskSuccess", true},
	{OutputsCreated, "knowrob.event.outputs_created", "Object created by the event", "entity_id", KnowRobNamespace + "outputsCreated", true},
	{GraspType, "knowrob.event.grasp_type", "Grasp used by the event", "entity_id", KnowRobNamespace + "graspType", true},
	{StartTime, "knowrob.event.start_time", "Timepoint at which the event started", "entity_id", KnowRobNamespace + "startTime", true},
	{EndTime, "knowrob.event.end_time", "Timepoint at which the event ended", "entity_id", KnowRobNamespace + "endTime", true},
	{Experiment, "knowrob.episode.experiment", "Unique tag of the logged episode", "string", KnowRobNamespace + "experiment", true},
	{InContact, "knowrob.event.in_contact", "Object taking part in a contact event", "entity_id", KnowRobUNamespace + "inContact", true},
	{PerformedBy, "knowrob.event.performed_by", "Agent or effector performing the event", "entity_id", KnowRobNamespace + "performedBy", true},
	{ObjectActedOn, "knowrob.event.object_acted_on", "Object manipulated by the event", "entity_id", KnowRobNamespace + "objectActedOn", true},
	{DeviceUsed, "knowrob.event.device_used", "Tool used during the event", "entity_id", KnowRobNamespace + "deviceUsed", true},
	{IsSupported, "knowrob.event.is_supported", "Object resting on a supporting object", "entity_id", KnowRobNamespace + "isSupported", true},
	{IsSupporting, "knowrob.event.is_supporting", "Object supporting another object", "entity_id", KnowRobNamespace + "isSupporting", true},
	{InEpisode, "knowrob.object.in_episode", "Episode in which the object was observed", "entity_id", KnowRobNamespace + "inEpisode", true},
	{SubAction, "knowrob.episode.sub_action", "Closed event that is part of the episode", "entity_id", KnowRobNamespace + "subAction", true},
	{SemanticMap, "knowrob.episode.semantic_map", "Semantic map the episode ran in", "entity_id", KnowRobUNamespace + "semanticMap", true},
	{DescribedInMap, "knowrob.object.described_in_map", "Semantic map that describes the object", "entity_id", KnowRobNamespace + "describedInMap", true},
	{Type, "rdf.type", "Class assertion", "entity_id", RDFNamespace + "type", false},
}

// PredicateKey returns the dotted graph key of a predicate, or its
// qualified name when the predicate is not part of the vocabulary.
func PredicateKey(name owl.PrefixedName) string {
	for _, p := range predicates {
		if p.name == name {
			return p.key
		}
	}
	return name.QName()
}

// Properties returns every declared property in declaration order.
func Properties() []owl.PrefixedName {
	out := make([]owl.PrefixedName, 0, len(predicates))
	for _, p := range predicates {
		if p.declare {
			out = append(out, p.name)
		}
	}
	return out
}

func init() {
	for _, p := range predicates {
		vocabulary.Register(p.key,
			vocabulary.WithDescription(p.description),
			vocabulary.WithDataType(p.dataType),
			vocabulary.WithIRI(p.iri))
	}
}
