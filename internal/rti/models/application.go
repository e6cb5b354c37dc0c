package models

import (
	"strings"
	"time"

	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
)

// Applicant identifies the citizen filing the request.
type Applicant struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PIO is the Public Information Officer the request is addressed to.
type PIO struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
}

// AppealDetails is present once an appeal has been filed.
type AppealDetails struct {
	Status         AppealStatus `json:"status"`
	Reason         string       `json:"reason"`
	SubmissionDate *time.Time   `json:"submission_date,omitempty"`
}

// Application is the aggregate root for an RTI request.
//
// Invariants:
//   - ID and Owner are immutable after construction
//   - Status changes only through Apply* methods guarded by the transition table
//   - Subject, Content, Department, PIO and Language change only while draft
//   - AppealDetails becomes pending exactly once, when an appeal is filed
type Application struct {
	ID             id.ApplicationID `json:"id"`
	Owner          id.UserID        `json:"owner"`
	Applicant      Applicant        `json:"applicant"`
	Department     string           `json:"department"`
	PIO            PIO              `json:"pio"`
	Subject        string           `json:"subject"`
	Content        string           `json:"content"`
	Language       id.Language      `json:"language"`
	Status         Status           `json:"status"`
	SubmissionDate *time.Time       `json:"submission_date"`
	ResponseDate   *time.Time       `json:"response_date"`
	Response       *string          `json:"response"`
	AppealDetails  *AppealDetails   `json:"appeal_details,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewApplication builds a draft owned by owner. Fields are trimmed; every
// missing field is reported in a single validation error.
func NewApplication(appID id.ApplicationID, owner id.UserID, f Fields, now time.Time) (*Application, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "owner is required")
	}
	f = f.normalized()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &Application{
		ID:         appID,
		Owner:      owner,
		Applicant:  f.Applicant,
		Department: f.Department,
		PIO:        f.PIO,
		Subject:    f.Subject,
		Content:    f.Content,
		Language:   f.Language,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	c.SubmissionDate = cloneTime(a.SubmissionDate)
	c.ResponseDate = cloneTime(a.ResponseDate)
	if a.Response != nil {
		r := *a.Response
		c.Response = &r
	}
	if a.AppealDetails != nil {
		d := *a.AppealDetails
		d.SubmissionDate = cloneTime(a.AppealDetails.SubmissionDate)
		c.AppealDetails = &d
	}
	return &c
}

// CanApply checks op against the transition table.
func (a *Application) CanApply(op Operation) error {
	_, err := NextStatus(a.Status, op)
	return err
}

// ApplyPatch writes the patch fields. Call CanApply(OpEdit) first.
func (a *Application) ApplyPatch(p Patch, now time.Time) {
	if p.Subject != nil {
		a.Subject = *p.Subject
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.Department != nil {
		a.Department = *p.Department
	}
	if p.PIO != nil {
		a.PIO = *p.PIO
	}
	if p.Language != nil {
		a.Language = *p.Language
	}
	a.UpdatedAt = now
}

// ApplySubmit moves a draft to submitted. Call CanApply(OpSubmit) first.
func (a *Application) ApplySubmit(now time.Time) {
	a.Status = StatusSubmitted
	a.SubmissionDate = &now
	a.UpdatedAt = now
}

// ApplyAppeal records a pending appeal. Call CanApply(OpAppeal) first.
func (a *Application) ApplyAppeal(reason string, now time.Time) {
	a.Status = StatusAppealed
	a.AppealDetails = &AppealDetails{
		Status:         AppealStatusPending,
		Reason:         reason,
		SubmissionDate: &now,
	}
	a.UpdatedAt = now
}

// ApplyOutcome records an administrative status change. Responses and
// rejections stamp ResponseDate; response text is kept when provided.
func (a *Application) ApplyOutcome(op Operation, response string, now time.Time) error {
	next, err := NextStatus(a.Status, op)
	if err != nil {
		return err
	}
	a.Status = next
	if op == OpRespond || op == OpReject {
		a.ResponseDate = &now
		if response != "" {
			a.Response = &response
		}
	}
	a.UpdatedAt = now
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Fields are the caller-supplied values for a new application.
type Fields struct {
	Applicant  Applicant
	Department string
	PIO        PIO
	Subject    string
	Content    string
	Language   id.Language
}

func (f Fields) normalized() Fields {
	f.Applicant.Name = strings.TrimSpace(f.Applicant.Name)
	f.Applicant.Email = strings.ToLower(strings.TrimSpace(f.Applicant.Email))
	f.Applicant.Phone = strings.TrimSpace(f.Applicant.Phone)
	f.Applicant.Address = strings.TrimSpace(f.Applicant.Address)
	f.Department = strings.TrimSpace(f.Department)
	f.PIO.Name = strings.TrimSpace(f.PIO.Name)
	f.PIO.Designation = strings.TrimSpace(f.PIO.Designation)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Content = strings.TrimSpace(f.Content)
	if f.Language == "" {
		f.Language = id.DefaultLanguage
	}
	return f
}

func (f Fields) validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"applicant.name", f.Applicant.Name},
		{"applicant.email", f.Applicant.Email},
		{"applicant.phone", f.Applicant.Phone},
		{"applicant.address", f.Applicant.Address},
		{"department", f.Department},
		{"pio.name", f.PIO.Name},
		{"pio.designation", f.PIO.Designation},
		{"subject", f.Subject},
		{"content", f.Content},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return dErrors.Validation("missing required fields: "+strings.Join(missing, ", "), missing...)
	}
	if !f.Language.IsValid() {
		return dErrors.Validation("unsupported language: "+string(f.Language), "language")
	}
	return nil
}
