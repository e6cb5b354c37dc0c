package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
)

// Patch is a partial update of a draft. Only allow-listed fields exist on the
// type, so any Patch value is within the allow-list by construction; DecodePatch
// enforces the same list on raw request bodies.
type Patch struct {
	Subject    *string
	Content    *string
	Department *string
	PIO        *PIO
	Language   *id.Language
}

// PatchableFields is the update allow-list.
var PatchableFields = []string{"subject", "content", "department", "pio", "language"}

var patchable = map[string]bool{
	"subject":    true,
	"content":    true,
	"department": true,
	"pio":        true,
	"language":   true,
}

// DecodePatch parses a JSON object into a Patch. Any key outside the
// allow-list fails the whole patch, as does any invalid value.
func DecodePatch(body []byte) (Patch, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return Patch{}, dErrors.New(dErrors.CodeValidation, "Invalid updates")
	}

	var unknown []string
	for key := range raw {
		if !patchable[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Patch{}, dErrors.Validation("Invalid updates: "+strings.Join(unknown, ", "), unknown...)
	}

	var p Patch
	for key, value := range raw {
		if err := p.decodeField(key, value); err != nil {
			return Patch{}, err
		}
	}
	if err := p.Validate(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

func (p *Patch) decodeField(key string, value json.RawMessage) error {
	invalid := dErrors.Validation("invalid value for "+key, key)
	switch key {
	case "subject", "content", "department":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return invalid
		}
		switch key {
		case "subject":
			p.Subject = &s
		case "content":
			p.Content = &s
		default:
			p.Department = &s
		}
	case "pio":
		var pio PIO
		if err := json.Unmarshal(value, &pio); err != nil {
			return invalid
		}
		p.PIO = &pio
	case "language":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return invalid
		}
		lang, err := id.ParseLanguage(s)
		if err != nil {
			return err
		}
		p.Language = &lang
	}
	return nil
}

// Validate trims every present field and rejects empty values and patches
// that change nothing.
func (p *Patch) Validate() error {
	if p.IsEmpty() {
		return dErrors.Validation("Invalid updates", PatchableFields...)
	}
	var empty []string
	trim := func(name string, s *string) {
		if s == nil {
			return
		}
		*s = strings.TrimSpace(*s)
		if *s == "" {
			empty = append(empty, name)
		}
	}
	trim("subject", p.Subject)
	trim("content", p.Content)
	trim("department", p.Department)
	if p.PIO != nil {
		trim("pio.name", &p.PIO.Name)
		trim("pio.designation", &p.PIO.Designation)
	}
	if len(empty) > 0 {
		return dErrors.Validation("fields cannot be empty: "+strings.Join(empty, ", "), empty...)
	}
	if p.Language != nil && !p.Language.IsValid() {
		return dErrors.Validation("unsupported language: "+string(*p.Language), "language")
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Subject == nil && p.Content == nil && p.Department == nil && p.PIO == nil && p.Language == nil
}

// Keys lists the fields present in the patch, for logging and audit.
func (p Patch) Keys() []string {
	var keys []string
	if p.Subject != nil {
		keys = append(keys, "subject")
	}
	if p.Content != nil {
		keys = append(keys, "content")
	}
	if p.Department != nil {
		keys = append(keys, "department")
	}
	if p.PIO != nil {
		keys = append(keys, "pio")
	}
	if p.Language != nil {
		keys = append(keys, "language")
	}
	return keys
}
