package domain

import "fmt"

// Status is the moderation state of a record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusAdopted  Status = "adopted"
	StatusResolved Status = "resolved"
	StatusReunited Status = "reunited"
)

// Action is a request to move a record to another status.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionAdopt   Action = "adopt"
	ActionResolve Action = "resolve"
	ActionReunite Action = "reunite"
)

// transition is one row of the moderation table.
// petsOnly marks outcome actions that only apply to pet listings.
type transition struct {
	from     []Status
	to       Status
	ownerMay bool
	petsOnly bool
}

var transitions = map[Action]transition{
	ActionApprove: {from: []Status{StatusPending, StatusRejected}, to: StatusApproved},
	ActionReject:  {from: []Status{StatusPending, StatusApproved}, to: StatusRejected},
	ActionAdopt:   {from: []Status{StatusApproved}, to: StatusAdopted, ownerMay: true, petsOnly: true},
	ActionResolve: {from: []Status{StatusApproved}, to: StatusResolved, ownerMay: true, petsOnly: true},
	ActionReunite: {from: []Status{StatusApproved}, to: StatusReunited, ownerMay: true, petsOnly: true},
}

// NextStatus returns the status a record moves to when action is applied.
//
// isOwner is whether the acting principal owns the record. Admins may apply
// every action; owners only the pet outcome actions.
// Returns ErrValidation for an unknown action, ErrForbidden when the role is
// insufficient, and ErrInvalidTransition when current is not a legal predecessor.
func NextStatus(c Collection, current Status, action Action, p Principal, isOwner bool) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if t.petsOnly && c != CollectionPets {
		return "", fmt.Errorf("%w: %s does not apply to %s", ErrInvalidTransition, action, c)
	}
	if !p.IsAdmin() && !(t.ownerMay && isOwner) {
		return "", fmt.Errorf("%w: %s requires admin", ErrForbidden, action)
	}
	for _, from := range t.from {
		if current == from {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s a %s record", ErrInvalidTransition, action, current)
}
