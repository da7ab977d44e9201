package rpc

import (
	"net"
	"net/http"

	"github.com/Klingon-tech/klingnet-hd/config"
)

// accessPolicy applies the IP allow-list and CORS settings in front of the
// JSON-RPC handler. The zero value allows every peer and sends no CORS
// headers.
type accessPolicy struct {
	allowed []*net.IPNet
	origins []string
}

func newAccessPolicy(cfg config.RPCConfig) accessPolicy {
	return accessPolicy{
		allowed: parseAllowedIPs(cfg.AllowedIPs),
		origins: cfg.CORSOrigins,
	}
}

// parseAllowedIPs converts IP and CIDR entries to networks. Unparseable
// entries are skipped.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		if _, ipNet, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, ipNet)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 8 * net.IPv6len
		if ip.To4() != nil {
			bits = 8 * net.IPv4len
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// permits reports whether a request from remoteAddr (host:port) may proceed.
func (p accessPolicy) permits(remoteAddr string) bool {
	if len(p.allowed) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range p.allowed {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not listed.
func (p accessPolicy) allowOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	for _, o := range p.origins {
		switch o {
		case "*":
			return "*"
		case origin:
			return origin
		}
	}
	return ""
}

// wrap enforces the policy before next runs. Preflight requests end here.
func (p accessPolicy) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.permits(r.RemoteAddr) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if allow := p.allowOrigin(r.Header.Get("Origin")); allow != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allow)
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
