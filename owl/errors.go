package owl

import "errors"

// Document and individual errors.
var (
	// ErrDuplicateIndividual is returned when an individual with the same
	// identity is already part of the document.
	ErrDuplicateIndividual = errors.New("duplicate individual identity")

	// ErrSubjectMismatch is returned when a fact is added to an individual
	// other than its subject.
	ErrSubjectMismatch = errors.New("triple subject does not match individual")

	// ErrSealed is returned when a sealed document is mutated.
	ErrSealed = errors.New("document is sealed")
)
