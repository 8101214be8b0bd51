package owl

import "fmt"

// NamedIndividual is an identity plus the ordered facts about it.
type NamedIndividual struct {
	identity PrefixedName
	facts    []Triple
	comment  string
}

// NewIndividual creates an individual with no facts.
func NewIndividual(identity PrefixedName) *NamedIndividual {
	return &NamedIndividual{identity: identity}
}

// Identity returns the individual's name.
func (i *NamedIndividual) Identity() PrefixedName { return i.identity }

// Facts returns a copy of the facts in insertion order.
func (i *NamedIndividual) Facts() []Triple {
	out := make([]Triple, len(i.facts))
	copy(out, i.facts)
	return out
}

// Comment is rendered as an XML comment before the individual.
func (i *NamedIndividual) Comment() string { return i.comment }

// SetComment sets the rendering comment.
func (i *NamedIndividual) SetComment(c string) { i.comment = c }

// AddFact appends a fact about this individual.
func (i *NamedIndividual) AddFact(t Triple) error {
	if t.Subject() != i.identity {
		return fmt.Errorf("%w: %s on %s", ErrSubjectMismatch, t.Subject(), i.identity)
	}
	i.facts = append(i.facts, t)
	return nil
}

// AddResource appends a resource fact with this individual as subject.
func (i *NamedIndividual) AddResource(predicate, object PrefixedName) {
	i.facts = append(i.facts, NewResourceTriple(i.identity, predicate, object))
}

// AddLiteral appends a literal fact with this individual as subject.
func (i *NamedIndividual) AddLiteral(predicate PrefixedName, lit Literal) {
	i.facts = append(i.facts, NewLiteralTriple(i.identity, predicate, lit))
}

// ResourcesOf returns the resource objects of every fact with predicate.
func (i *NamedIndividual) ResourcesOf(predicate PrefixedName) []PrefixedName {
	var out []PrefixedName
	for _, f := range i.facts {
		if r, ok := f.Resource(); ok && f.Predicate() == predicate {
			out = append(out, r)
		}
	}
	return out
}
