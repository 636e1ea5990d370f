package domain

// SubjectType differentiates staff tokens from automated callers.
type SubjectType string

const (
	SubjectTypeStaff  SubjectType = "staff"
	SubjectTypeSystem SubjectType = "system"
)
