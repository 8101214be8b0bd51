package owl

import (
	"strconv"
)

// XSD datatype names used by literal facts.
var (
	XSDString  = Name("xsd", "string")
	XSDBoolean = Name("xsd", "boolean")
	XSDDouble  = Name("xsd", "double")
)

// Literal is a typed literal value.
type Literal struct {
	Value    string
	Datatype PrefixedName
}

// StringLiteral returns an xsd:string literal.
func StringLiteral(v string) Literal {
	return Literal{Value: v, Datatype: XSDString}
}

// BoolLiteral returns an xsd:boolean literal.
func BoolLiteral(v bool) Literal {
	return Literal{Value: strconv.FormatBool(v), Datatype: XSDBoolean}
}

// DoubleLiteral returns an xsd:double literal.
func DoubleLiteral(v float64) Literal {
	return Literal{Value: strconv.FormatFloat(v, 'f', -1, 64), Datatype: XSDDouble}
}

// Native returns the value as bool, float64 or string according to the
// datatype.
func (l Literal) Native() any {
	switch l.Datatype {
	case XSDBoolean:
		if b, err := strconv.ParseBool(l.Value); err == nil {
			return b
		}
	case XSDDouble:
		if f, err := strconv.ParseFloat(l.Value, 64); err == nil {
			return f
		}
	}
	return l.Value
}

// Triple is a subject-predicate-object fact. The object is either a
// resource (another individual or class) or a typed literal.
// Triples are values and cannot be changed after construction.
type Triple struct {
	subject   PrefixedName
	predicate PrefixedName
	resource  PrefixedName
	literal   Literal
	isLiteral bool
}

// NewResourceTriple returns a triple pointing at another resource.
func NewResourceTriple(subject, predicate, object PrefixedName) Triple {
	return Triple{subject: subject, predicate: predicate, resource: object}
}

// NewLiteralTriple returns a triple carrying a typed literal.
func NewLiteralTriple(subject, predicate PrefixedName, lit Literal) Triple {
	return Triple{subject: subject, predicate: predicate, literal: lit, isLiteral: true}
}

// Subject of the fact.
func (t Triple) Subject() PrefixedName { return t.subject }

// Predicate of the fact.
func (t Triple) Predicate() PrefixedName { return t.predicate }

// Resource returns the object resource; ok is false for literal facts.
func (t Triple) Resource() (PrefixedName, bool) {
	return t.resource, !t.isLiteral
}

// Literal returns the object literal; ok is false for resource facts.
func (t Triple) Literal() (Literal, bool) {
	return t.literal, t.isLiteral
}

// IsLiteral reports whether the object is a literal.
func (t Triple) IsLiteral() bool { return t.isLiteral }
