package cache

import "net/http"

// Manager holds separate cache instances for the audit trail and impact
// record read endpoints, each with its own TTL. A nil Manager is valid and
// disables caching.
type Manager struct {
	audit  *LRUCache
	impact *LRUCache
}

// NewManager creates a Manager from the given configuration.
// If cfg is nil or disabled, it returns nil.
func NewManager(cfg *Config) *Manager {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Manager{
		audit:  NewLRUCache(cfg.MaxSize, cfg.AuditTTL),
		impact: NewLRUCache(cfg.MaxSize, cfg.ImpactTTL),
	}
}

// InvalidateAll clears both caches entirely.
func (m *Manager) InvalidateAll() {
	if m == nil {
		return
	}
	m.audit.InvalidateAll()
	m.impact.InvalidateAll()
}

// AuditMiddleware returns middleware caching audit trail reads. When the
// manager is nil the middleware is a pass-through.
func (m *Manager) AuditMiddleware() func(http.Handler) http.Handler {
	if m == nil {
		return passthrough
	}
	return Middleware(m.audit)
}

// ImpactMiddleware returns middleware caching impact record reads. When the
// manager is nil the middleware is a pass-through.
func (m *Manager) ImpactMiddleware() func(http.Handler) http.Handler {
	if m == nil {
		return passthrough
	}
	return Middleware(m.impact)
}

func passthrough(next http.Handler) http.Handler { return next }
