package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/payloadregistry"
)

// RegisterPayloads registers IndividualPayload with reg. Binaries that decode
// graph ingest messages as BaseMessages call it on their registry.
func RegisterPayloads(reg *payloadregistry.Registry) error {
	return reg.Register(&payloadregistry.Registration{
		Domain:      IndividualType.Domain,
		Category:    IndividualType.Category,
		Version:     IndividualType.Version,
		Description: "Episode individual (event, object, timepoint or episode) with triples",
		Factory:     func() any { return &IndividualPayload{} },
	})
}

// IndividualType is the message type for individual payloads.
var IndividualType = message.Type{Domain: "semlog", Category: "individual", Version: "v1"}

// IndividualPayload carries one named individual for graph ingestion. Its
// JSON form is the EntityIngestMessage wire format.
type IndividualPayload struct {
	EntityID_  string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (e *IndividualPayload) EntityID() string          { return e.EntityID_ }
func (e *IndividualPayload) Triples() []message.Triple { return e.TripleData }
func (e *IndividualPayload) Schema() message.Type      { return IndividualType }

func (e *IndividualPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if len(e.TripleData) == 0 {
		return errors.New("at least one triple is required")
	}
	return nil
}

func (e *IndividualPayload) MarshalJSON() ([]byte, error) {
	type Alias IndividualPayload
	return json.Marshal((*Alias)(e))
}

func (e *IndividualPayload) UnmarshalJSON(data []byte) error {
	type Alias IndividualPayload
	return json.Unmarshal(data, (*Alias)(e))
}
