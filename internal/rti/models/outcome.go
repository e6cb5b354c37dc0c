package models

import (
	"strings"

	dErrors "rtidesk/pkg/domain-errors"
)

// Outcome is an administrative decision recorded against a submitted application.
type Outcome struct {
	Status   Status
	Response string
}

// Operation maps the requested status onto a transition table operation.
func (o Outcome) Operation() (Operation, error) {
	switch o.Status {
	case StatusUnderReview:
		return OpStartReview, nil
	case StatusResponded:
		return OpRespond, nil
	case StatusRejected:
		return OpReject, nil
	default:
		return "", dErrors.Validation("outcome status must be one of under_review, responded, rejected", "status")
	}
}

// Normalize trims the response text.
func (o Outcome) Normalize() Outcome {
	o.Response = strings.TrimSpace(o.Response)
	return o
}
