package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// StripPort returns the host part of "host:port" or "[v6]:port". Input
// without a port is returned unchanged.
func StripPort(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}

// ClientIP resolves the caller address. With trustProxy the CF-Connecting-IP
// header wins, then the left-most X-Forwarded-For entry; otherwise only
// RemoteAddr counts. The zero Addr is returned when nothing parses.
func ClientIP(r *http.Request, trustProxy bool) netip.Addr {
	if trustProxy {
		if a, ok := parseAddr(r.Header.Get("CF-Connecting-IP")); ok {
			return a
		}
		first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		if a, ok := parseAddr(first); ok {
			return a
		}
	}
	a, _ := parseAddr(r.RemoteAddr)
	return a
}

func parseAddr(s string) (netip.Addr, bool) {
	s = StripPort(strings.TrimSpace(s))
	a, err := netip.ParseAddr(strings.Trim(s, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}

// AddrSet matches addresses against single IPs and CIDR prefixes.
type AddrSet struct {
	prefixes []netip.Prefix
}

// ParseAddrSet builds a set from "10.0.0.0/8" or "192.168.1.7" entries.
// Entries that parse as neither are returned in rejected.
func ParseAddrSet(list []string) (set AddrSet, rejected []string) {
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			set.prefixes = append(set.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			a = a.Unmap()
			set.prefixes = append(set.prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		rejected = append(rejected, s)
	}
	return set, rejected
}

func (s AddrSet) Empty() bool { return len(s.prefixes) == 0 }

func (s AddrSet) Contains(a netip.Addr) bool {
	if !a.IsValid() {
		return false
	}
	for _, p := range s.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
