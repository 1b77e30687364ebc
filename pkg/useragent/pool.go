package useragent

import "sync/atomic"

// Browsers is the default set of desktop browser User-Agents. Many contact and
// directory pages refuse obvious non-browser clients, so fetches always present one of these.
var Browsers = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
}

// Pool hands out User-Agent strings. It is safe for concurrent use.
type Pool struct {
	agents []string
	next   atomic.Uint64
}

// NewPool copies agents into a new pool, falling back to Browsers when empty.
func NewPool(agents []string) *Pool {
	if len(agents) == 0 {
		agents = Browsers
	}
	return &Pool{agents: append([]string(nil), agents...)}
}

// Next returns agents in round-robin order.
func (p *Pool) Next() string {
	if len(p.agents) == 0 {
		return ""
	}
	i := p.next.Add(1) - 1
	return p.agents[i%uint64(len(p.agents))]
}

// Len reports the number of agents in the pool.
func (p *Pool) Len() int { return len(p.agents) }
