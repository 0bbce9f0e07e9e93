package discovery

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ApexDomain reduces a homepage URL to its registrable domain using the
// Public Suffix List: "https://docs.example.com/x" and
// "https://a.b.example.com" both give "example.com", "https://foo.github.io"
// gives "foo.github.io". IP literals and single-label hosts are returned
// unchanged. ok is false when homepage has no host.
func ApexDomain(homepage string) (apex string, ok bool) {
	s := strings.TrimSpace(homepage)
	if s == "" {
		return "", false
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", false
	}
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host, true
	}
	if apex, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return apex, true
	}
	labels := strings.Split(host, ".")
	return strings.Join(labels[len(labels)-2:], "."), true
}
