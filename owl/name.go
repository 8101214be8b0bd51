package owl

import "strings"

// PrefixedName is a name inside a declared namespace.
// An empty Prefix means Local already is an absolute IRI.
type PrefixedName struct {
	Prefix string
	Local  string
}

// Name builds a PrefixedName.
func Name(prefix, local string) PrefixedName {
	return PrefixedName{Prefix: prefix, Local: local}
}

// IRIName wraps an absolute IRI.
func IRIName(iri string) PrefixedName {
	return PrefixedName{Local: iri}
}

// IsZero reports whether the name is unset.
func (n PrefixedName) IsZero() bool {
	return n.Prefix == "" && n.Local == ""
}

// QName renders the name as prefix:local, the form used for element names.
func (n PrefixedName) QName() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// EntityRef renders the name as &prefix;local, the form used in rdf:about
// and rdf:resource attributes.
func (n PrefixedName) EntityRef() string {
	if n.Prefix == "" {
		return n.Local
	}
	return "&" + n.Prefix + ";" + n.Local
}

// String returns the entity reference form.
func (n PrefixedName) String() string {
	return n.EntityRef()
}

// Namespace binds a prefix to its IRI.
type Namespace struct {
	Prefix string
	IRI    string
}

// Namespaces resolves prefixed names to absolute IRIs.
type Namespaces []Namespace

// Lookup returns the IRI bound to prefix.
func (ns Namespaces) Lookup(prefix string) (string, bool) {
	for _, n := range ns {
		if n.Prefix == prefix {
			return n.IRI, true
		}
	}
	return "", false
}

// Resolve expands a prefixed name to an absolute IRI. Unknown prefixes are
// kept in qualified form.
func (ns Namespaces) Resolve(n PrefixedName) string {
	if n.Prefix == "" {
		return n.Local
	}
	iri, ok := ns.Lookup(n.Prefix)
	if !ok {
		return n.QName()
	}
	if !strings.HasSuffix(iri, "#") && !strings.HasSuffix(iri, "/") {
		iri += "#"
	}
	return iri + n.Local
}
