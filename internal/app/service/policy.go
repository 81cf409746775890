package service

import (
	"github.com/shortyhq/shorty/internal/app/repository"
	"github.com/shortyhq/shorty/internal/auth"
)

// Access policy: capability checks derived from the resolved identity.
// Mutations are scoped in SQL rather than checked up front, so a forbidden
// caller gets the same answer as a missing record.

// mutationScope returns the owner constraint for updates and deletes.
// Admins act on any record (nil scope); everyone else only on their own.
func mutationScope(identity *auth.Identity) *string {
	if identity.IsAdmin() {
		return nil
	}
	return &identity.UserID
}

// listFilter builds the listing constraints for a caller: anonymous callers
// see only active links with a tighter cap, authenticated non-admins see
// their own links, admins see everything.
func listFilter(identity *auth.Identity, status, search string, anonLimit, limit int) repository.ListFilter {
	filter := repository.ListFilter{
		Status: status,
		Search: search,
		Limit:  limit,
	}

	switch {
	case identity == nil:
		filter.ActiveOnly = true
		filter.Limit = anonLimit
	case !identity.IsAdmin():
		filter.OwnerID = identity.UserID
	}
	return filter
}

// statsScope limits aggregations to the caller's own links unless admin.
func statsScope(identity *auth.Identity) string {
	if identity.IsAdmin() {
		return ""
	}
	return identity.UserID
}
