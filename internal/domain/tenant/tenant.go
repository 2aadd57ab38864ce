// Package tenant implements multi-tenant client authorization. A tenant is a
// registered integrator identified by an opaque client ID and bound to a set
// of domains allowed to embed the voice widget.
package tenant

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Tenant identifies a registered integrator.
type Tenant struct {
	ClientID       string
	AllowedDomains map[string]struct{}
}

// Registry is the immutable tenant configuration, loaded at process start.
type Registry struct {
	tenants map[string]Tenant
}

// NewRegistry builds a registry from a clientID -> allowed domains mapping.
func NewRegistry(allowed map[string][]string) *Registry {
	tenants := make(map[string]Tenant, len(allowed))
	for clientID, domains := range allowed {
		set := make(map[string]struct{}, len(domains))
		for _, d := range domains {
			d = strings.ToLower(strings.TrimSpace(d))
			if d != "" {
				set[d] = struct{}{}
			}
		}
		tenants[clientID] = Tenant{ClientID: clientID, AllowedDomains: set}
	}
	return &Registry{tenants: tenants}
}

// LoadRegistry reads tenant configuration from the environment:
// ALLOWED_CLIENTS is a comma-separated list of client IDs, and each client
// has CLIENT_<id>_DOMAINS with its comma-separated allowed hostnames.
func LoadRegistry(lookup func(string) (string, bool)) (*Registry, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	raw, ok := lookup("ALLOWED_CLIENTS")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("ALLOWED_CLIENTS is required")
	}

	allowed := make(map[string][]string)
	for _, clientID := range strings.Split(raw, ",") {
		clientID = strings.TrimSpace(clientID)
		if clientID == "" {
			continue
		}
		domains, _ := lookup("CLIENT_" + clientID + "_DOMAINS")
		allowed[clientID] = strings.Split(domains, ",")
	}

	if len(allowed) == 0 {
		return nil, fmt.Errorf("ALLOWED_CLIENTS contains no client IDs")
	}

	return NewRegistry(allowed), nil
}

// Lookup returns the tenant for a client ID.
func (r *Registry) Lookup(clientID string) (Tenant, bool) {
	t, ok := r.tenants[clientID]
	return t, ok
}

// ExtractDomain returns the hostname of a referer URL. Malformed or empty
// URLs yield an empty hostname rather than an error.
func ExtractDomain(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
