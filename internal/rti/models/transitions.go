package models

import (
	dErrors "rtidesk/pkg/domain-errors"
)

// Operation names a caller or administrative action on an application.
type Operation string

const (
	OpEdit        Operation = "edit"
	OpSubmit      Operation = "submit"
	OpDelete      Operation = "delete"
	OpStartReview Operation = "start_review"
	OpRespond     Operation = "respond"
	OpReject      Operation = "reject"
	OpAppeal      Operation = "appeal"
)

// transitions is the single source of truth for the lifecycle:
// operation -> allowed current status -> next status.
// Delete keeps the status because the record is removed.
var transitions = map[Operation]map[Status]Status{
	OpEdit:   {StatusDraft: StatusDraft},
	OpSubmit: {StatusDraft: StatusSubmitted},
	OpDelete: {StatusDraft: StatusDraft},

	OpStartReview: {StatusSubmitted: StatusUnderReview},
	OpRespond: {
		StatusSubmitted:   StatusResponded,
		StatusUnderReview: StatusResponded,
	},
	OpReject: {
		StatusSubmitted:   StatusRejected,
		StatusUnderReview: StatusRejected,
	},

	OpAppeal: {
		StatusResponded: StatusAppealed,
		StatusRejected:  StatusAppealed,
	},
}

// NextStatus returns the status reached by applying op from current.
// Returns CodeInvalidState when the table has no such edge.
func NextStatus(current Status, op Operation) (Status, error) {
	next, ok := transitions[op][current]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidState,
			"cannot "+string(op)+" an application in status "+string(current))
	}
	return next, nil
}

// Allows reports whether op is permitted from current.
func Allows(current Status, op Operation) bool {
	_, ok := transitions[op][current]
	return ok
}

// AllowedFrom lists the statuses op may start from, in lifecycle order.
func AllowedFrom(op Operation) []Status {
	from := make([]Status, 0, len(transitions[op]))
	for _, s := range orderedStatuses {
		if _, ok := transitions[op][s]; ok {
			from = append(from, s)
		}
	}
	return from
}

var orderedStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusResponded,
	StatusRejected,
	StatusAppealed,
}
