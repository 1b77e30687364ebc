package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// Profile names the TLS ClientHello a fetch presents.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
	ProfileGo      Profile = "go"
	ProfileRandom  Profile = "random"
)

var helloIDs = map[Profile]utls.ClientHelloID{
	ProfileChrome:  utls.HelloChrome_Auto,
	ProfileFirefox: utls.HelloFirefox_Auto,
	ProfileSafari:  utls.HelloIOS_Auto,
	ProfileRandom:  utls.HelloRandomizedNoALPN,
}

// Parse maps a configuration string to a Profile. Empty means ProfileChrome.
func Parse(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return ProfileChrome, nil
	}
	if p == ProfileGo {
		return p, nil
	}
	if _, ok := helloIDs[p]; !ok {
		return "", fmt.Errorf("unknown tls profile %q", s)
	}
	return p, nil
}

// Transport builds a round tripper for p. ProfileGo uses the stock crypto/tls
// handshake; every other profile dials TLS through utls with the matching ClientHello,
// offering only HTTP/1.1. Root CAs set later on the returned transport's
// TLSClientConfig also apply to the utls handshake.
// proxyFunc, when non-nil, replaces the environment proxy lookup.
func Transport(p Profile, proxyFunc func(*http.Request) (*url.URL, error)) (http.RoundTripper, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if proxyFunc != nil {
		tr.Proxy = proxyFunc
	}
	if p == ProfileGo {
		return tr, nil
	}

	hello, ok := helloIDs[p]
	if !ok {
		return nil, fmt.Errorf("unknown tls profile %q", p)
	}

	dial := tr.DialContext
	tr.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		raw, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		cfg := &utls.Config{ServerName: host}
		if tr.TLSClientConfig != nil {
			cfg.RootCAs = tr.TLSClientConfig.RootCAs
			cfg.InsecureSkipVerify = tr.TLSClientConfig.InsecureSkipVerify
		}
		conn, err := uclient(raw, cfg, hello)
		if err != nil {
			_ = raw.Close()
			return nil, err
		}
		if err := conn.HandshakeContext(ctx); err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("utls handshake with %s: %w", host, err)
		}
		return conn, nil
	}
	return tr, nil
}

// uclient wraps raw in a utls client presenting hello with its ALPN offer cut
// down to http/1.1, the only protocol the transport speaks over a utls conn.
func uclient(raw net.Conn, cfg *utls.Config, hello utls.ClientHelloID) (*utls.UConn, error) {
	if hello == utls.HelloRandomizedNoALPN {
		return utls.UClient(raw, cfg, hello), nil
	}

	spec, err := utls.UTLSIdToSpec(hello)
	if err != nil {
		return nil, fmt.Errorf("client hello %s: %w", hello.Str(), err)
	}
	for _, ext := range spec.Extensions {
		switch e := ext.(type) {
		case *utls.ALPNExtension:
			e.AlpnProtocols = []string{"http/1.1"}
		case *utls.ApplicationSettingsExtension:
			e.SupportedProtocols = []string{"http/1.1"}
		}
	}

	conn := utls.UClient(raw, cfg, utls.HelloCustom)
	if err := conn.ApplyPreset(&spec); err != nil {
		return nil, fmt.Errorf("apply client hello %s: %w", hello.Str(), err)
	}
	return conn, nil
}
