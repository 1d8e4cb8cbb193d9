// ABOUTME: Connectivity oracle consumed by the sync engine
// ABOUTME: Reports current reachability; polled at the start of each engine operation

package connectivity

import (
	"net"
	"net/url"
	"time"
)

// Oracle reports whether the remote service is currently reachable.
type Oracle interface {
	IsConnected() bool
}

// Checker probes reachability with a short TCP dial to the API host.
type Checker struct {
	Addr    string // host:port, e.g. "api.pinboard.in:443"
	Timeout time.Duration
}

// NewChecker returns a Checker with a 1s dial timeout.
func NewChecker(addr string) *Checker {
	return &Checker{Addr: addr, Timeout: time.Second}
}

func (c *Checker) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", c.Addr, c.Timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Static is a fixed answer, used for the --offline flag and in tests.
type Static bool

func (s Static) IsConnected() bool { return bool(s) }

// AddrFromURL derives the host:port a Checker should dial for the given
// base URL, defaulting the port from the scheme.
func AddrFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if u.Port() != "" {
		return u.Host
	}
	port := "443"
	if u.Scheme == "http" {
		port = "80"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
