package tenant

import (
	"context"

	"gorm.io/gorm"
)

// Session is a live handle to one tenant's isolated storage namespace.
// Sessions are constructed only by the registry, cached for the process
// lifetime, and shared by every request for that tenant. The underlying
// connection pool is safe for concurrent use.
type Session struct {
	tenantID  string
	namespace string
	db        *gorm.DB
}

// TenantID returns the tenant this session is bound to.
func (s *Session) TenantID() string { return s.tenantID }

// Namespace returns the physical namespace name this session is scoped to.
func (s *Session) Namespace() string { return s.namespace }

// DB returns the tenant-scoped store handle bound to ctx.
func (s *Session) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// close releases the underlying connection pool.
func (s *Session) close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
