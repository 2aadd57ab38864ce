package tenant

import "testing"

type auditSpy struct {
	calls   int
	allowed []bool
}

func (a *auditSpy) RecordAuthorization(clientID, referer string, allowed bool) {
	a.calls++
	a.allowed = append(a.allowed, allowed)
}

func testRegistry() *Registry {
	return NewRegistry(map[string][]string{
		"t1": {"a.com", "sub.a.com"},
		"t2": {"b.com"},
	})
}

func TestGuard_Authorize(t *testing.T) {
	guard := NewGuard(testRegistry(), nil)

	tests := []struct {
		name     string
		clientID string
		referer  string
		want     bool
	}{
		{
			name:     "allowed domain",
			clientID: "t1",
			referer:  "https://a.com/page",
			want:     true,
		},
		{
			name:     "allowed subdomain entry",
			clientID: "t1",
			referer:  "https://sub.a.com/widget?x=1",
			want:     true,
		},
		{
			name:     "domain of other tenant",
			clientID: "t1",
			referer:  "https://b.com",
			want:     false,
		},
		{
			name:     "unknown client ID",
			clientID: "nope",
			referer:  "https://a.com",
			want:     false,
		},
		{
			name:     "empty referer",
			clientID: "t1",
			referer:  "",
			want:     false,
		},
		{
			name:     "malformed referer",
			clientID: "t1",
			referer:  "://not a url",
			want:     false,
		},
		{
			name:     "hostname case folded",
			clientID: "t1",
			referer:  "https://A.COM/page",
			want:     true,
		},
		{
			name:     "port does not defeat matching",
			clientID: "t2",
			referer:  "https://b.com:8443/embed",
			want:     true,
		},
		{
			name:     "prefix lookalike domain",
			clientID: "t1",
			referer:  "https://a.com.evil.net",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guard.Authorize(tt.clientID, tt.referer); got != tt.want {
				t.Errorf("Authorize(%q, %q) = %v, want %v", tt.clientID, tt.referer, got, tt.want)
			}
		})
	}
}

func TestGuard_AuditEmitted(t *testing.T) {
	spy := &auditSpy{}
	guard := NewGuard(testRegistry(), spy)

	guard.Authorize("t1", "https://a.com")
	guard.Authorize("t1", "https://b.com")

	if spy.calls != 2 {
		t.Fatalf("expected 2 audit records, got %d", spy.calls)
	}
	if !spy.allowed[0] || spy.allowed[1] {
		t.Errorf("audit outcomes = %v, want [true false]", spy.allowed)
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{name: "plain https", referer: "https://a.com/page", want: "a.com"},
		{name: "with port", referer: "http://a.com:3000", want: "a.com"},
		{name: "empty", referer: "", want: ""},
		{name: "garbage", referer: "\x7f://a.com", want: ""},
		{name: "no scheme", referer: "a.com/page", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDomain(tt.referer); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.referer, got, tt.want)
			}
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	env := map[string]string{
		"ALLOWED_CLIENTS":    "t1, t2",
		"CLIENT_t1_DOMAINS":  "a.com,sub.a.com",
		"CLIENT_t2_DOMAINS":  "b.com",
		"CLIENT_t3_DOMAINS":  "c.com", // not listed in ALLOWED_CLIENTS
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	reg, err := LoadRegistry(lookup)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	if _, ok := reg.Lookup("t1"); !ok {
		t.Error("expected tenant t1 in registry")
	}
	if _, ok := reg.Lookup("t3"); ok {
		t.Error("t3 is not in ALLOWED_CLIENTS, must not be registered")
	}

	guard := NewGuard(reg, nil)
	if !guard.Authorize("t2", "https://b.com/x") {
		t.Error("expected t2/b.com to be authorized")
	}
}

func TestLoadRegistry_MissingConfig(t *testing.T) {
	lookup := func(string) (string, bool) { return "", false }
	if _, err := LoadRegistry(lookup); err == nil {
		t.Error("expected error when ALLOWED_CLIENTS is absent")
	}
}
