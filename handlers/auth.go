package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// RequireAdmin guards the admin routes: an authenticated record with
// role=admin (or a superuser) gets through, everyone else is rejected.
func RequireAdmin() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Auth == nil {
			return apis.NewUnauthorizedError("Unauthorized", nil)
		}
		if e.Auth.GetString("role") != "admin" && !e.Auth.IsSuperuser() {
			return apis.NewForbiddenError("You don't have permission to access this resource", nil)
		}
		return e.Next()
	}
}
