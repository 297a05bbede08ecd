package constants

// MissingPolicy decides what happens when a seed has no result directory or a
// configuration has no metrics file.
type MissingPolicy string

const (
	// MissingSkip records a warning and continues with the next unit.
	MissingSkip MissingPolicy = "skip"

	// MissingAbort fails the whole run.
	MissingAbort MissingPolicy = "abort"
)

// Valid returns true if the policy is a recognized value.
func (p MissingPolicy) Valid() bool {
	switch p {
	case MissingSkip, MissingAbort:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p MissingPolicy) String() string {
	return string(p)
}

// DuplicatePolicy decides how a metric that appears more than once in a
// single metrics file is recorded.
type DuplicatePolicy string

const (
	// DuplicateAccumulate records every occurrence as its own sample.
	DuplicateAccumulate DuplicatePolicy = "accumulate"

	// DuplicateLast keeps only the last occurrence in the file.
	DuplicateLast DuplicatePolicy = "last"

	// DuplicateError rejects the file.
	DuplicateError DuplicatePolicy = "error"
)

// Valid returns true if the policy is a recognized value.
func (p DuplicatePolicy) Valid() bool {
	switch p {
	case DuplicateAccumulate, DuplicateLast, DuplicateError:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p DuplicatePolicy) String() string {
	return string(p)
}

// InsufficientPolicy decides how a metric with fewer than two samples is rendered.
type InsufficientPolicy string

const (
	// InsufficientBlank writes empty statistic cells and records a warning.
	InsufficientBlank InsufficientPolicy = "blank"

	// InsufficientAbort fails the table write.
	InsufficientAbort InsufficientPolicy = "abort"
)

// Valid returns true if the policy is a recognized value.
func (p InsufficientPolicy) Valid() bool {
	switch p {
	case InsufficientBlank, InsufficientAbort:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p InsufficientPolicy) String() string {
	return string(p)
}
