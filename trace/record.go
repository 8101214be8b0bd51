// Package trace reads recorded simulation signals. A trace is a JSON-lines
// file with one record per signal, in simulation time order:
//
//	{"type":"joint","object":{"class":"Drawer","id":"1"},"axis":"linear","limit":0.4}
//	{"type":"begin","kind":"Contact","t":0.30,"a":{"class":"Cup","id":"1"},"b":{"class":"Table","id":"2"}}
//	{"type":"begin","kind":"Grasp","t":0.40,"a":{"class":"Hand","id":"R"},"b":{"class":"Cup","id":"1"},"grasp_type":"PowerGrasp"}
//	{"type":"end","kind":"Contact","t":0.33,"a":{"class":"Cup","id":"1"},"b":{"class":"Table","id":"2"}}
//	{"type":"sample","object":{"class":"Drawer","id":"1"},"value":0.12,"t":0.5}
//	{"type":"tick","t":0.5}
package trace

import (
	"fmt"

	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

// Type is the record type.
type Type string

// Record types.
const (
	TypeBegin        Type = "begin"
	TypeEnd          Type = "end"
	TypeOverlapBegin Type = "overlap_begin"
	TypeOverlapEnd   Type = "overlap_end"
	TypeSample       Type = "sample"
	TypeJoint        Type = "joint"
	TypeKinematics   Type = "kinematics"
	TypeTick         Type = "tick"
	TypeFinalize     Type = "finalize"
)

// Record is one trace line. Fields are used according to Type.
type Record struct {
	Type Type    `json:"type"`
	T    float64 `json:"t"`

	// begin / end
	Kind         string               `json:"kind,omitempty"`
	Variant      string               `json:"variant,omitempty"`
	A            *events.Participant  `json:"a,omitempty"`
	B            *events.Participant  `json:"b,omitempty"`
	Participants []events.Participant `json:"participants,omitempty"`

	// begin only: extra facts of the event
	Success   *bool                `json:"success,omitempty"`
	GraspType string               `json:"grasp_type,omitempty"`
	Outputs   []events.Participant `json:"outputs,omitempty"`

	// overlap_begin / overlap_end
	Self  *events.Participant `json:"self,omitempty"`
	Other *events.Participant `json:"other,omitempty"`

	// sample / joint / kinematics
	Object    *events.Participant `json:"object,omitempty"`
	Value     float64             `json:"value,omitempty"`
	Axis      string              `json:"axis,omitempty"`
	Reference float64             `json:"reference,omitempty"`
	Limit     float64             `json:"limit,omitempty"`
	Offset    float64             `json:"offset,omitempty"`
	Direction float64             `json:"direction,omitempty"`
	Z         float64             `json:"z,omitempty"`
	VZ        float64             `json:"vz,omitempty"`
	Surface   bool                `json:"surface,omitempty"`
}

// EventParticipants returns the participants of a begin or end record:
// the explicit list when present, otherwise a and b.
func (r Record) EventParticipants() []events.Participant {
	if len(r.Participants) > 0 {
		return r.Participants
	}
	var out []events.Participant
	if r.A != nil {
		out = append(out, *r.A)
	}
	if r.B != nil {
		out = append(out, *r.B)
	}
	return out
}

// Event returns the event described by a begin or end record.
func (r Record) Event() (events.Event, error) {
	kind, ok := events.ParseKind(r.Kind)
	if !ok {
		return events.Event{}, fmt.Errorf("%w: %q", events.ErrUnknownKind, r.Kind)
	}
	return events.Event{Kind: kind, Variant: r.Variant, Participants: r.EventParticipants()}, nil
}

// Facts returns the extra facts a begin record attaches to its event.
func (r Record) Facts() []events.Fact {
	var out []events.Fact
	if r.Success != nil {
		out = append(out, events.LiteralFact(knowrob.TaskSuccess, owl.BoolLiteral(*r.Success)))
	}
	if r.GraspType != "" {
		out = append(out, events.ResourceFact(knowrob.GraspType, owl.Name(knowrob.PrefixKnowRob, r.GraspType)))
	}
	for _, p := range r.Outputs {
		out = append(out, events.ParticipantFact(knowrob.OutputsCreated, p))
	}
	return out
}

// Validate checks that the fields required by the record type are set.
func (r Record) Validate() error {
	switch r.Type {
	case TypeBegin, TypeEnd:
		if r.Kind == "" {
			return fmt.Errorf("%w: %s without kind", ErrInvalidRecord, r.Type)
		}
		if len(r.EventParticipants()) == 0 {
			return fmt.Errorf("%w: %s without participants", ErrInvalidRecord, r.Type)
		}
	case TypeOverlapBegin, TypeOverlapEnd:
		if r.Self == nil || r.Other == nil {
			return fmt.Errorf("%w: %s needs self and other", ErrInvalidRecord, r.Type)
		}
	case TypeSample, TypeJoint, TypeKinematics:
		if r.Object == nil {
			return fmt.Errorf("%w: %s without object", ErrInvalidRecord, r.Type)
		}
	case TypeTick, TypeFinalize:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRecord, r.Type)
	}
	return nil
}
