package rpc

import (
	"testing"

	"github.com/Klingon-tech/klingnet-hd/config"
)

func TestAccessPolicy_Permits(t *testing.T) {
	p := newAccessPolicy(config.RPCConfig{
		AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8", "::1", "not-an-ip"},
	})
	if len(p.allowed) != 3 {
		t.Fatalf("parsed %d networks, want 3", len(p.allowed))
	}

	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:5000", true},
		{"10.20.30.40:1", true},
		{"[::1]:8745", true},
		{"192.168.1.1:80", false},
		{"127.0.0.2:80", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := p.permits(tt.addr); got != tt.want {
			t.Errorf("permits(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}

	var open accessPolicy
	if !open.permits("192.168.1.1:80") {
		t.Error("zero policy should allow every peer")
	}
}

func TestAccessPolicy_AllowOrigin(t *testing.T) {
	p := newAccessPolicy(config.RPCConfig{CORSOrigins: []string{"http://a.example"}})
	if got := p.allowOrigin("http://a.example"); got != "http://a.example" {
		t.Errorf("listed origin = %q", got)
	}
	if got := p.allowOrigin("http://b.example"); got != "" {
		t.Errorf("unlisted origin = %q", got)
	}
	if got := p.allowOrigin(""); got != "" {
		t.Errorf("empty origin = %q", got)
	}

	wild := newAccessPolicy(config.RPCConfig{CORSOrigins: []string{"*"}})
	if got := wild.allowOrigin("http://x.example"); got != "*" {
		t.Errorf("wildcard = %q", got)
	}
}
