package knowrob

import "github.com/c360studio/semlog/owl"

// Namespace IRIs.
const (
	RDFNamespace      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace     = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace      = "http://www.w3.org/2002/07/owl#"
	XSDNamespace      = "http://www.w3.org/2001/XMLSchema#"
	KnowRobNamespace  = "http://knowrob.org/kb/knowrob.owl#"
	KnowRobUNamespace = "http://knowrob.org/kb/knowrob_u.owl#"
	LogNamespace      = "http://knowrob.org/kb/unreal_log.owl#"
	UMapNamespace     = "http://knowrob.org/kb/u_map.owl#"
	ComputableNS      = "http://knowrob.org/kb/computable.owl#"
	SWRLNamespace     = "http://www.w3.org/2003/11/swrl#"
)

// Prefixes.
const (
	PrefixRDF      = "rdf"
	PrefixRDFS     = "rdfs"
	PrefixOWL      = "owl"
	PrefixXSD      = "xsd"
	PrefixKnowRob  = "knowrob"
	PrefixKnowRobU = "knowrob_u"
	PrefixLog      = "log"
	PrefixUMap     = "u-map"
)

// Ontology document and imports.
const (
	LogOntology       = "http://knowrob.org/kb/unreal_log.owl"
	KnowRobImport     = "package://knowrob_common/owl/knowrob.owl"
	KnowRobUImport    = "package://knowrob_robcog/owl/knowrob_u.owl"
	DefaultEventsBase = "http://knowrob.org/kb/u_map.owl#"
)

// Class names.
var (
	TimePoint        = owl.Name(PrefixKnowRob, "TimePoint")
	UnrealExperiment = owl.Name(PrefixKnowRobU, "UnrealExperiment")

	TouchingSituation     = owl.Name(PrefixKnowRobU, "TouchingSituation")
	GraspingSomething     = owl.Name(PrefixKnowRob, "GraspingSomething")
	SupportedBySituation  = owl.Name(PrefixKnowRob, "SupportedBySituation")
	ContainerManipulation = owl.Name(PrefixKnowRob, "ContainerManipulation")
	ReachingForSomething  = owl.Name(PrefixKnowRob, "ReachingForSomething")
	TransportingSituation = owl.Name(PrefixKnowRob, "TransportingSituation")
	PickUpSituation       = owl.Name(PrefixKnowRob, "PickUpSituation")
	PutDownSituation      = owl.Name(PrefixKnowRob, "PutDownSituation")
	SlicingSomething      = owl.Name(PrefixKnowRob, "SlicingSomething")
	SlidingSituation      = owl.Name(PrefixKnowRob, "SlidingSituation")

	PreGraspClass            = owl.Name(PrefixKnowRob, "PreGrasp")
	PreGraspPositioningClass = owl.Name(PrefixKnowRob, "PreGraspPositioning")

	FurnitureStateClosed     = owl.Name(PrefixKnowRobU, "FurnitureStateClosed")
	FurnitureStateHalfClosed = owl.Name(PrefixKnowRobU, "FurnitureStateHalfClosed")
	FurnitureStateHalfOpened = owl.Name(PrefixKnowRobU, "FurnitureStateHalfOpened")
	FurnitureStateOpened     = owl.Name(PrefixKnowRobU, "FurnitureStateOpened")
)

// FurnitureStatePrefix is the local-name prefix of furniture state classes.
const FurnitureStatePrefix = "FurnitureState"

// ObjectClass returns the knowrob class of a participant class name.
func ObjectClass(class string) owl.PrefixedName {
	return owl.Name(PrefixKnowRob, class)
}

// Entities are the DOCTYPE entity declarations of an events document.
func Entities() owl.Namespaces {
	return owl.Namespaces{
		{Prefix: PrefixRDF, IRI: RDFNamespace},
		{Prefix: PrefixRDFS, IRI: RDFSNamespace},
		{Prefix: PrefixOWL, IRI: OWLNamespace},
		{Prefix: PrefixXSD, IRI: XSDNamespace},
		{Prefix: PrefixKnowRob, IRI: KnowRobNamespace},
		{Prefix: PrefixKnowRobU, IRI: KnowRobUNamespace},
		{Prefix: PrefixLog, IRI: LogNamespace},
		{Prefix: PrefixUMap, IRI: UMapNamespace},
	}
}

// XMLNamespaces are the xmlns declarations on the rdf:RDF element.
func XMLNamespaces() owl.Namespaces {
	return owl.Namespaces{
		{Prefix: "computable", IRI: ComputableNS},
		{Prefix: "swrl", IRI: SWRLNamespace},
		{Prefix: PrefixRDF, IRI: RDFNamespace},
		{Prefix: PrefixRDFS, IRI: RDFSNamespace},
		{Prefix: PrefixOWL, IRI: OWLNamespace},
		{Prefix: PrefixKnowRob, IRI: KnowRobNamespace},
		{Prefix: PrefixKnowRobU, IRI: KnowRobUNamespace},
		{Prefix: PrefixUMap, IRI: UMapNamespace},
	}
}

// Classes declared in every events document.
func Classes() []owl.PrefixedName {
	return []owl.PrefixedName{
		UnrealExperiment,
		TouchingSituation,
		GraspingSomething,
		SupportedBySituation,
		ContainerManipulation,
		ReachingForSomething,
		TransportingSituation,
		PickUpSituation,
		PutDownSituation,
		SlicingSomething,
		SlidingSituation,
		PreGraspClass,
		PreGraspPositioningClass,
		FurnitureStateClosed,
		FurnitureStateHalfClosed,
		FurnitureStateHalfOpened,
		FurnitureStateOpened,
	}
}

// DocumentConfig returns the declarations of a KnowRob events document.
func DocumentConfig() owl.Config {
	props := make([]owl.PrefixedName, 0, len(predicates))
	for _, p := range predicates {
		if p.declare {
			props = append(props, p.name)
		}
	}
	return owl.Config{
		Declarations: owl.Declarations{
			Entities:   Entities(),
			Namespaces: XMLNamespaces(),
			Base:       DefaultEventsBase,
			Ontology:   LogOntology,
			Imports:    []string{KnowRobImport, KnowRobUImport},
			Properties: props,
			Classes:    Classes(),
		},
		IndividualPrefix: PrefixLog,
		TypePredicate:    Type,
		TimepointClass:   TimePoint,
	}
}
