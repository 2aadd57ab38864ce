package tenant

// Auditor receives authorization outcomes. Implementations must not block;
// the guard is called on every request.
type Auditor interface {
	RecordAuthorization(clientID, referer string, allowed bool)
}

// Guard validates client identifiers against the tenant registry and the
// request's referer domain. It fails closed on unknown clients, missing or
// malformed referers, and hostnames outside the tenant's allowed set.
type Guard struct {
	registry *Registry
	auditor  Auditor
}

// NewGuard creates a guard over a registry. auditor may be nil.
func NewGuard(registry *Registry, auditor Auditor) *Guard {
	return &Guard{registry: registry, auditor: auditor}
}

// Authorize reports whether clientID may be served for a request originating
// from refererURL. Pure over the registry plus the two inputs; the audit
// record is fire-and-forget.
func (g *Guard) Authorize(clientID, refererURL string) bool {
	allowed := g.check(clientID, refererURL)
	if g.auditor != nil {
		g.auditor.RecordAuthorization(clientID, refererURL, allowed)
	}
	return allowed
}

func (g *Guard) check(clientID, refererURL string) bool {
	t, ok := g.registry.Lookup(clientID)
	if !ok {
		return false
	}

	domain := ExtractDomain(refererURL)
	if domain == "" {
		return false
	}

	_, ok = t.AllowedDomains[domain]
	return ok
}
