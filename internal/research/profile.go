package research

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NotFound is the value of every profile field the dossier does not support.
const NotFound = "Information not found."

var (
	// ErrMalformedProfile is returned when the model's answer does not match the profile contract.
	ErrMalformedProfile = errors.New("malformed company profile")
	// ErrNoCompanies is returned when no company names could be extracted.
	ErrNoCompanies = errors.New("no company names extracted")
)

// CompanyProfile is the structured summary of one company.
type CompanyProfile struct {
	CompanyName        string `json:"company_name"`
	OneLinePitch       string `json:"one_line_pitch"`
	KeyPeople          string `json:"key_people"`
	Website            string `json:"website"`
	FundingStatus      string `json:"funding_status"`
	ContactInformation string `json:"contact_information"`
}

// wireProfile detects missing keys: every field must be present in the model's answer.
type wireProfile struct {
	CompanyName        *string `json:"company_name"`
	OneLinePitch       *string `json:"one_line_pitch"`
	KeyPeople          *string `json:"key_people"`
	Website            *string `json:"website"`
	FundingStatus      *string `json:"funding_status"`
	ContactInformation *string `json:"contact_information"`
}

// ParseProfile strictly decodes a model answer into a CompanyProfile. The answer must be
// one JSON object with exactly the six profile keys, all strings. A surrounding markdown
// code fence is tolerated. Blank and "not found" style values become NotFound.
func ParseProfile(answer string) (CompanyProfile, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(stripFence(answer))))
	dec.DisallowUnknownFields()

	var w wireProfile
	if err := dec.Decode(&w); err != nil {
		return CompanyProfile{}, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}
	if dec.More() {
		return CompanyProfile{}, fmt.Errorf("%w: trailing data after object", ErrMalformedProfile)
	}

	fields := []struct {
		key string
		val *string
	}{
		{"company_name", w.CompanyName},
		{"one_line_pitch", w.OneLinePitch},
		{"key_people", w.KeyPeople},
		{"website", w.Website},
		{"funding_status", w.FundingStatus},
		{"contact_information", w.ContactInformation},
	}
	for _, f := range fields {
		if f.val == nil {
			return CompanyProfile{}, fmt.Errorf("%w: missing %q", ErrMalformedProfile, f.key)
		}
	}

	return CompanyProfile{
		CompanyName:        normalize(*w.CompanyName),
		OneLinePitch:       normalize(*w.OneLinePitch),
		KeyPeople:          normalize(*w.KeyPeople),
		Website:            normalize(*w.Website),
		FundingStatus:      normalize(*w.FundingStatus),
		ContactInformation: normalize(*w.ContactInformation),
	}, nil
}

// Markdown renders the profile with its six labelled fields.
func (p CompanyProfile) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- **Company Name:** %s\n", p.CompanyName)
	fmt.Fprintf(&b, "- **One-Line Pitch:** %s\n", p.OneLinePitch)
	fmt.Fprintf(&b, "- **Key People (Founders/CEO):** %s\n", p.KeyPeople)
	fmt.Fprintf(&b, "- **Website:** %s\n", p.Website)
	fmt.Fprintf(&b, "- **Funding Status:** %s\n", p.FundingStatus)
	fmt.Fprintf(&b, "- **Contact Information:** %s\n", p.ContactInformation)
	return b.String()
}

var notFoundVariants = map[string]bool{
	"":                      true,
	"information not found": true,
	"not found":             true,
	"n/a":                   true,
	"na":                    true,
	"none":                  true,
	"unknown":               true,
	"not available":         true,
	"not mentioned":         true,
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	key := strings.ToLower(strings.TrimRight(v, ". "))
	if notFoundVariants[key] {
		return NotFound
	}
	return v
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
