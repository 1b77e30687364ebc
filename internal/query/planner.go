package query

import (
	"fmt"
	"strings"
)

// PhraseSet is a fixed list of discovery-intent phrases combined with a topic.
type PhraseSet struct {
	Name string `yaml:"name"`
	// QuoteTopic wraps the topic in double quotes so the search engine treats it as a phrase.
	QuoteTopic bool     `yaml:"quote_topic"`
	Phrases    []string `yaml:"phrases"`
}

// Quick is the short list used for fast snippet-only lookups.
var Quick = PhraseSet{
	Name:       "quick",
	QuoteTopic: true,
	Phrases: []string{
		"contact email",
		`startup founder email "@"`,
	},
}

// Standard is the general-purpose list used alongside seed-site scraping.
var Standard = PhraseSet{
	Name: "standard",
	Phrases: []string{
		"email contact",
		"investor email",
		"contact information",
		"team email",
		"founder email",
	},
}

// Deep targets industry investors and leadership roles.
var Deep = PhraseSet{
	Name:       "deep",
	QuoteTopic: true,
	Phrases: []string{
		"investor email address",
		"VC email contacts",
		"angel investor email",
		"investment firm contact",
		"venture capital partner email",
		"investor relations email",
		"founder email address",
		"team contact information",
		"company directory email",
		"executive team email",
		"CEO email address",
		"contact information",
		"leadership team contact",
		"staff directory",
	},
}

// Builtin returns the named built-in phrase set.
func Builtin(name string) (PhraseSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Quick.Name:
		return Quick, nil
	case Standard.Name, "":
		return Standard, nil
	case Deep.Name:
		return Deep, nil
	default:
		return PhraseSet{}, fmt.Errorf("unknown phrase set %q", name)
	}
}

// Plan returns the ordered queries for topic. It is deterministic: the same
// topic and set always produce the same sequence.
func Plan(topic string, set PhraseSet) []string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	subject := topic
	if set.QuoteTopic {
		subject = `"` + topic + `"`
	}

	queries := make([]string, 0, len(set.Phrases))
	for _, phrase := range set.Phrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		queries = append(queries, subject+" "+phrase)
	}
	return queries
}
