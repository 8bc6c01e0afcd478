package compat

// Domain identifies the subsystem an error originated in.
type Domain string

// Category identifies who has to act on an error.
type Category string

const (
	DomainAgent Domain = "agent"

	CategoryUser   Category = "user"
	CategorySystem Category = "system"
)

// UsageError is a hard, classified error raised when the conversation cannot
// be normalized at all. It is the only error class this package raises;
// everything else in the normalizer is a pure fixup.
type UsageError struct {
	ID       string
	Domain   Domain
	Category Category
	Message  string
}

func (e *UsageError) Error() string { return e.Message }
