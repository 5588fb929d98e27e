package netutil

import "testing"

func TestExpandCIDR(t *testing.T) {
	hosts, err := ExpandCIDR("192.168.1.0/30")
	if err != nil {
		t.Fatalf("ExpandCIDR() error = %v", err)
	}
	want := []string{"192.168.1.1", "192.168.1.2"}
	if len(hosts) != len(want) {
		t.Fatalf("got %d hosts, want %d: %v", len(hosts), len(want), hosts)
	}
	for i, h := range want {
		if hosts[i] != h {
			t.Errorf("hosts[%d] = %q, want %q", i, hosts[i], h)
		}
	}
}

func TestExpandCIDRSingleIP(t *testing.T) {
	hosts, err := ExpandCIDR("10.0.0.5")
	if err != nil {
		t.Fatalf("ExpandCIDR() error = %v", err)
	}
	if len(hosts) != 1 || hosts[0] != "10.0.0.5" {
		t.Errorf("got %v, want [10.0.0.5]", hosts)
	}
}

func TestExpandCIDRInvalid(t *testing.T) {
	if _, err := ExpandCIDR("not-an-ip"); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestExpandCIDRTooLarge(t *testing.T) {
	if _, err := ExpandCIDR("10.0.0.0/8"); err == nil {
		t.Error("expected error for a /8 range")
	}
	if _, err := ExpandCIDR("2001:db8::/64"); err == nil {
		t.Error("expected error for a v6 /64 range")
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw     string
		host    string
		baseURL string
		wantErr bool
	}{
		{"example.com", "example.com", "http://example.com", false},
		{"https://example.com", "example.com", "https://example.com", false},
		{"http://example.com/some/path", "example.com", "http://example.com", false},
		{"example.com:8080", "example.com", "http://example.com:8080", false},
		{"203.0.113.7", "203.0.113.7", "http://203.0.113.7", false},
		{"ftp://example.com", "", "", true},
		{"", "", "", true},
		{"http://", "", "", true},
	}
	for _, tt := range tests {
		host, baseURL, err := ParseTarget(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTarget(%q) expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTarget(%q) error = %v", tt.raw, err)
			continue
		}
		if host != tt.host || baseURL != tt.baseURL {
			t.Errorf("ParseTarget(%q) = (%q, %q), want (%q, %q)",
				tt.raw, host, baseURL, tt.host, tt.baseURL)
		}
	}
}
