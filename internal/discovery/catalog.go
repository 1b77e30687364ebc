package discovery

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/FranksOps/leadscout/internal/contact"
)

// Catalog names.
const (
	CatalogGeneric = "generic"
	CatalogNamed   = "named"
	CatalogQuick   = "quick"
	CatalogNone    = "none"
)

// SampleTitle is the source title of every generic fallback record.
const SampleTitle = "Sample Contact"

var genericEmails = []string{
	"investor@venturecap.com",
	"partner@angelinvestors.com",
	"funding@startupvc.com",
	"deals@investmentfirm.com",
	"capital@fundingpartners.com",
	"info@venturefund.com",
	"contact@seedinvestors.com",
	"hello@startupfunding.com",
	"support@investornetwork.com",
	"team@venturecapital.com",
}

var quickEmails = []string{
	"investor@venturecap.com",
	"funding@startupvc.com",
	"info@venturefund.com",
	"deals@investmentfirm.com",
	"team@venturecapital.com",
}

var namedEmails = []string{
	"thomas.jones@venturefirm.com",
	"kinga.stanislawska@microvc.com",
	"anne.vazquez@equityfirm.com",
	"steven.vine@angelinvestor.com",
	"colin.hanna@vcpartners.com",
	"brandon.zeuner@venturecap.com",
	"klaus.lovgreen@angelinvestor.com",
	"steve.anderson@venturecap.com",
	"justin.mccarthy@angelinvestor.com",
	"samantha.mcgonigle@venturecap.com",
	"james.wise@equityfirm.com",
	"dan.galpern@venturecap.com",
	"brahm.klar@venturecap.com",
	"tcm.sundaram@microvc.com",
	"maxime.ledantec@venturecap.com",
}

// Catalog returns the fallback records for name, in their fixed order.
// Every record is marked Synthetic with OriginFallback.
func Catalog(name string) ([]contact.Record, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case CatalogGeneric, "":
		return sampleRecords(genericEmails), nil
	case CatalogQuick:
		return sampleRecords(quickEmails), nil
	case CatalogNamed:
		return namedRecords(namedEmails), nil
	case CatalogNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown fallback catalog %q", name)
	}
}

func sampleRecords(emails []string) []contact.Record {
	out := make([]contact.Record, 0, len(emails))
	for _, email := range emails {
		domain := domainOf(email)
		out = append(out, contact.Record{
			Email:       email,
			SourceTitle: SampleTitle,
			SourceLink:  "https://www." + domain,
			Context:     "Contact at " + domain,
			Origin:      contact.OriginFallback,
			Synthetic:   true,
		})
	}
	return out
}

// namedRecords derives a person and company from each address:
// "kinga.stanislawska@microvc.com" becomes "Kinga Stanislawska - Microvc".
func namedRecords(emails []string) []contact.Record {
	out := make([]contact.Record, 0, len(emails))
	for _, email := range emails {
		local, domain, _ := strings.Cut(email, "@")
		person := titleCase(strings.ReplaceAll(local, ".", " "))
		company := titleCase(strings.SplitN(domain, ".", 2)[0])
		out = append(out, contact.Record{
			Email:       email,
			SourceTitle: person + " - " + company,
			SourceLink:  "https://www." + domain,
			Context:     "Investor at " + company,
			Origin:      contact.OriginFallback,
			Synthetic:   true,
		})
	}
	return out
}

func domainOf(email string) string {
	_, domain, _ := strings.Cut(email, "@")
	return domain
}

// titleCase upper-cases the first letter of every letter run and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
