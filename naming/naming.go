// Package naming derives stable identities for simulation participants and
// random names for anonymous event instances.
package naming

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/semlog/owl"
)

// Alphabet is the character set of anonymous suffixes.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultSuffixLength is the length of anonymous event suffixes.
const DefaultSuffixLength = 4

// DeriveIdentity returns &namespace;Class_InstanceId.
func DeriveIdentity(namespace, class, instanceID string) owl.PrefixedName {
	return owl.Name(namespace, class+"_"+instanceID)
}

// GenerateAnonymousSuffix returns a random alphanumeric string of length n.
// Suffixes are not guaranteed to be unique.
func GenerateAnonymousSuffix(n int) string {
	return suffix(rand.IntN, n)
}

func suffix(intn func(int) int, n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(Alphabet[intn(len(Alphabet))])
	}
	return b.String()
}

// NewEpisodeID returns a short unique episode tag.
func NewEpisodeID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Source supplies random integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Namer generates event names in a namespace.
type Namer struct {
	namespace    string
	suffixLength int
	src          Source
}

// Option configures a Namer.
type Option func(*Namer)

// WithSuffixLength sets the anonymous suffix length.
func WithSuffixLength(n int) Option {
	return func(nm *Namer) {
		if n > 0 {
			nm.suffixLength = n
		}
	}
}

// WithSource replaces the random source.
func WithSource(src Source) Option {
	return func(nm *Namer) { nm.src = src }
}

// NewNamer creates a Namer for individuals in namespace.
func NewNamer(namespace string, opts ...Option) *Namer {
	nm := &Namer{namespace: namespace, suffixLength: DefaultSuffixLength}
	for _, opt := range opts {
		opt(nm)
	}
	return nm
}

// Namespace returns the namer's namespace prefix.
func (n *Namer) Namespace() string { return n.namespace }

// Suffix returns a fresh anonymous suffix.
func (n *Namer) Suffix() string {
	if n.src == nil {
		return GenerateAnonymousSuffix(n.suffixLength)
	}
	return suffix(n.src.IntN, n.suffixLength)
}

// EventName returns an anonymous event identity Class_<suffix>.
func (n *Namer) EventName(class string) owl.PrefixedName {
	return DeriveIdentity(n.namespace, class, n.Suffix())
}

// Identity returns the identity of a participant.
func (n *Namer) Identity(class, instanceID string) owl.PrefixedName {
	return DeriveIdentity(n.namespace, class, instanceID)
}
