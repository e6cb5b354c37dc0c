package models

import (
	"strings"

	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
)

// CreateRequest is the body of POST /rti.
type CreateRequest struct {
	Applicant  Applicant `json:"applicant"`
	Department string    `json:"department"`
	PIO        PIO       `json:"pio"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Language   string    `json:"language"`
}

// Fields converts the request into validated-language Fields. Presence
// checks happen in NewApplication so all missing fields are reported together.
func (r CreateRequest) Fields() (Fields, error) {
	lang, err := id.ParseLanguage(r.Language)
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		Applicant:  r.Applicant,
		Department: r.Department,
		PIO:        r.PIO,
		Subject:    r.Subject,
		Content:    r.Content,
		Language:   lang,
	}, nil
}

// AppealRequest is the body of POST /rti/{id}/appeal.
type AppealRequest struct {
	Reason string `json:"reason"`
}

// Validate trims the reason and requires it.
func (r *AppealRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.Validation("Appeal reason is required", "reason")
	}
	return nil
}

// OutcomeRequest is the body of POST /admin/rti/{id}/outcome.
type OutcomeRequest struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// Outcome validates the request. Responses and rejections carry the
// authority's reply text.
func (r OutcomeRequest) Outcome() (Outcome, error) {
	o := Outcome{Status: Status(strings.TrimSpace(r.Status)), Response: r.Response}.Normalize()
	if _, err := o.Operation(); err != nil {
		return Outcome{}, err
	}
	if o.Status != StatusUnderReview && o.Response == "" {
		return Outcome{}, dErrors.Validation("response is required when recording a reply or rejection", "response")
	}
	return o, nil
}
