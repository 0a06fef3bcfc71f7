package config

import (
	"net/netip"
	"strings"
	"time"
)

type SecurityConfig interface {
	GetSessionCookieMaxAge() time.Duration
	GetAuthRateLimit() float64
	GetAuthRateBurst() int
	GetTrustedProxies() TrustedProxies
}

type Security struct{}

var _ SecurityConfig = Security{}

// TrustedProxies are the peers whose X-Forwarded-For header is believed
type TrustedProxies []netip.Prefix

// Trusts reports whether addr, a bare IP, sits inside one of the prefixes
func (t TrustedProxies) Trusts(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, p := range t {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// GetSessionCookieMaxAge is the lifetime of the browser-session cookie, not of the auth token
func (Security) GetSessionCookieMaxAge() time.Duration {
	return GetDuration("SESSION_COOKIE_MAX_AGE", 30*24*time.Hour)
}

// GetAuthRateLimit is the number of sign-in/sign-up submits allowed per second per client IP
func (Security) GetAuthRateLimit() float64 {
	return GetFloat("AUTH_RATE_LIMIT", 5)
}

func (Security) GetAuthRateBurst() int {
	return GetInt("AUTH_RATE_BURST", 10)
}

// GetTrustedProxies reads a comma separated TRUSTED_PROXIES list of IPs or
// CIDRs. Empty by default, so forwarding headers are ignored. Entries that
// don't parse are skipped.
func (Security) GetTrustedProxies() TrustedProxies {
	var proxies TrustedProxies
	for _, entry := range strings.Split(GetEnv("TRUSTED_PROXIES", ""), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if p, err := netip.ParsePrefix(entry); err == nil {
			proxies = append(proxies, p.Masked())
			continue
		}
		if ip, err := netip.ParseAddr(entry); err == nil {
			ip = ip.Unmap()
			proxies = append(proxies, netip.PrefixFrom(ip, ip.BitLen()))
		}
	}
	return proxies
}
