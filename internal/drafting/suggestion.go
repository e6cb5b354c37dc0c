package drafting

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	dErrors "rtidesk/pkg/domain-errors"
)

// parseSuggestion treats raw as untrusted text: optional code fences are
// removed, then exactly one object with the three expected keys is accepted.
func parseSuggestion(raw string) (Suggestion, error) {
	text := stripCodeFence(raw)
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var s Suggestion
	if err := dec.Decode(&s); err != nil {
		return Suggestion{}, dErrors.Wrap(err, dErrors.CodeParse, "Failed to suggest department and PIO")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Suggestion{}, dErrors.New(dErrors.CodeParse, "Failed to suggest department and PIO")
	}

	s.Department = strings.TrimSpace(s.Department)
	s.PIODesignation = strings.TrimSpace(s.PIODesignation)
	s.Explanation = strings.TrimSpace(s.Explanation)
	if s.Department == "" || s.PIODesignation == "" || s.Explanation == "" {
		return Suggestion{}, dErrors.New(dErrors.CodeParse, "Failed to suggest department and PIO")
	}
	return s, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
