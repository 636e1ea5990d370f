package domain

// AssignmentKind classifies a change of assignee.
type AssignmentKind string

const (
	AssignmentNew      AssignmentKind = "new_assignment"
	AssignmentUnassign AssignmentKind = "unassignment"
	AssignmentTransfer AssignmentKind = "transfer"
	AssignmentNoop     AssignmentKind = "noop"
)

// AssignmentEvent is the transition computed for one reassignment request. It is not persisted.
type AssignmentEvent struct {
	EntityKind EntityKind
	EntityID   string
	Previous   *string
	Next       *string
	Kind       AssignmentKind
}

// ClassifyAssignment maps (previous, next) to exactly one AssignmentKind. Nil and empty ids are absent.
func ClassifyAssignment(previous, next *string) AssignmentKind {
	prev, hasPrev := assigneeValue(previous)
	nxt, hasNext := assigneeValue(next)
	switch {
	case !hasPrev && !hasNext:
		return AssignmentNoop
	case !hasPrev:
		return AssignmentNew
	case !hasNext:
		return AssignmentUnassign
	case prev == nxt:
		return AssignmentNoop
	default:
		return AssignmentTransfer
	}
}

// NewAssignmentEvent builds a classified event for the entity.
func NewAssignmentEvent(kind EntityKind, entityID string, previous, next *string) AssignmentEvent {
	return AssignmentEvent{
		EntityKind: kind,
		EntityID:   entityID,
		Previous:   normalizeAssignee(previous),
		Next:       normalizeAssignee(next),
		Kind:       ClassifyAssignment(previous, next),
	}
}

func assigneeValue(id *string) (string, bool) {
	if id == nil || *id == "" {
		return "", false
	}
	return *id, true
}

func normalizeAssignee(id *string) *string {
	if v, ok := assigneeValue(id); ok {
		return &v
	}
	return nil
}
