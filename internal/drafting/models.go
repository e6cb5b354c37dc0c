package drafting

import (
	"strings"

	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
)

// DraftRequest is the body of POST /ai/generate-rti.
type DraftRequest struct {
	ApplicantName    string `json:"applicantName"`
	ApplicantAddress string `json:"applicantAddress"`
	AuthorityName    string `json:"authorityName"`
	AuthorityAddress string `json:"authorityAddress"`
	Query            string `json:"query"`
	Language         string `json:"language"`
}

// Validate trims every field and reports the missing ones together.
func (r *DraftRequest) Validate() (id.Language, error) {
	r.ApplicantName = strings.TrimSpace(r.ApplicantName)
	r.ApplicantAddress = strings.TrimSpace(r.ApplicantAddress)
	r.AuthorityName = strings.TrimSpace(r.AuthorityName)
	r.AuthorityAddress = strings.TrimSpace(r.AuthorityAddress)
	r.Query = strings.TrimSpace(r.Query)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"applicantName", r.ApplicantName},
		{"applicantAddress", r.ApplicantAddress},
		{"authorityName", r.AuthorityName},
		{"authorityAddress", r.AuthorityAddress},
		{"query", r.Query},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "", dErrors.Validation("missing required fields: "+strings.Join(missing, ", "), missing...)
	}
	return id.ParseLanguage(r.Language)
}

// Subject is the one-line summary logged for each draft request.
func (r DraftRequest) Subject() string {
	query := []rune(r.Query)
	if len(query) > 50 {
		query = query[:50]
	}
	return "RTI Application by " + r.ApplicantName + " regarding " + string(query) + "..."
}

// SuggestRequest is the body of POST /ai/suggest.
type SuggestRequest struct {
	Subject string `json:"subject"`
	Details string `json:"details"`
}

// ReviewRequest is the body of POST /ai/review.
type ReviewRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
}

// Suggestion is the department and PIO proposed for a request.
type Suggestion struct {
	Department     string `json:"department"`
	PIODesignation string `json:"pioDesignation"`
	Explanation    string `json:"explanation"`
}
