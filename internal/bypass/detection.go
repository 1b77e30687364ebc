package bypass

import (
	"bytes"
	"net/http"
	"slices"
	"strings"
)

// Signature describes how one bot-protection vendor announces a block or challenge page.
// A response matches when its status is listed and any of the server hint, header
// names or body markers is present.
type Signature struct {
	Vendor      string
	Statuses    []int
	ServerHint  string
	Headers     []string
	BodyMarkers []string
}

// Signatures is the default set checked by Detect.
var Signatures = []Signature{
	{
		Vendor:     "Cloudflare",
		Statuses:   []int{http.StatusForbidden, http.StatusServiceUnavailable},
		ServerHint: "cloudflare",
		BodyMarkers: []string{
			"cf-browser-verification",
			"cloudflare-nginx",
			"cf-turnstile",
			"Attention Required! | Cloudflare",
		},
	},
	{
		Vendor:      "Akamai",
		Statuses:    []int{http.StatusForbidden},
		ServerHint:  "akamai",
		BodyMarkers: []string{"Reference #"},
	},
	{
		Vendor:      "DataDome",
		Statuses:    []int{http.StatusForbidden},
		ServerHint:  "datadome",
		Headers:     []string{"X-DataDome", "X-DataDome-Response"},
		BodyMarkers: []string{"geo.captcha-delivery.com", "datadome"},
	},
	{
		Vendor:      "PerimeterX",
		Statuses:    []int{http.StatusForbidden},
		Headers:     []string{"X-Px-Captcha"},
		BodyMarkers: []string{"client.perimeterx.net", "px-captcha", "_pxBlock"},
	},
}

// Detect reports the vendor whose block page the response looks like, if any.
// Pages behind such a wall carry no usable contact text.
func Detect(status int, header http.Header, body []byte) (vendor string, blocked bool) {
	return detectWith(Signatures, status, header, body)
}

func detectWith(sigs []Signature, status int, header http.Header, body []byte) (string, bool) {
	server := strings.ToLower(header.Get("Server"))
	for _, sig := range sigs {
		if !slices.Contains(sig.Statuses, status) {
			continue
		}
		if sig.ServerHint != "" && strings.Contains(server, sig.ServerHint) {
			return sig.Vendor, true
		}
		for _, h := range sig.Headers {
			if header.Get(h) != "" {
				return sig.Vendor, true
			}
		}
		for _, marker := range sig.BodyMarkers {
			if bytes.Contains(body, []byte(marker)) {
				return sig.Vendor, true
			}
		}
	}
	return "", false
}
