package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrUnknownProxy is returned when reporting on a proxy that is not in the pool.
var ErrUnknownProxy = errors.New("proxy: not in pool")

type entry struct {
	url       *url.URL
	failures  int
	successes int
	benchedTo time.Time
}

// Config defines settings for the Proxy Pool.
type Config struct {
	// MaxFailures consecutive failures bench a proxy (default 3).
	MaxFailures int
	// Cooldown is how long a benched proxy sits out (default 5m).
	Cooldown time.Duration
}

// Pool rotates through proxies, skipping any that are benched after repeated failures.
type Pool struct {
	mu      sync.Mutex
	entries []*entry
	cursor  int
	cfg     Config
	now     func() time.Time
}

// NewPool creates an empty pool.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{cfg: cfg, now: time.Now}
}

// LoadFile reads one proxy URL per line from path.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open proxy list: %w", err)
	}
	defer f.Close()
	return p.Load(f)
}

// Load reads one proxy URL per line; blank lines and '#' comments are skipped.
func (p *Pool) Load(r io.Reader) error {
	var raws []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raws = append(raws, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read proxy list: %w", err)
	}
	return p.Add(raws...)
}

// Add parses and appends proxies. A missing scheme defaults to http.
func (p *Pool) Add(raws ...string) error {
	parsed := make([]*entry, 0, len(raws))
	for _, raw := range raws {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse proxy %q: %w", raw, err)
		}
		parsed = append(parsed, &entry{url: u})
	}

	p.mu.Lock()
	p.entries = append(p.entries, parsed...)
	p.mu.Unlock()
	return nil
}

// Len reports how many proxies are configured, benched or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Next returns the next available proxy, or nil when the pool is empty or fully benched.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for range p.entries {
		e := p.entries[p.cursor]
		p.cursor = (p.cursor + 1) % len(p.entries)

		if !e.benchedTo.IsZero() {
			if now.Before(e.benchedTo) {
				continue
			}
			e.benchedTo = time.Time{}
			e.failures = 0
		}
		return e.url
	}
	return nil
}

// Report records the outcome of a request made through u.
func (p *Pool) Report(u *url.URL, ok bool) error {
	if u == nil {
		return ErrUnknownProxy
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var e *entry
	for _, cand := range p.entries {
		if cand.url.String() == u.String() {
			e = cand
			break
		}
	}
	if e == nil {
		return ErrUnknownProxy
	}

	if ok {
		e.successes++
		e.failures = 0
		return nil
	}
	e.failures++
	if e.failures >= p.cfg.MaxFailures {
		e.benchedTo = p.now().Add(p.cfg.Cooldown)
	}
	return nil
}
