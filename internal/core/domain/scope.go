package domain

import "fmt"

// Scope is the effective branch visibility of a request, resolved
// once at the boundary. A nil branch means "all branches" and is
// only reachable by global admins.
type Scope struct {
	principal Principal
	branch    *uint
}

// ResolveScope computes the effective branch scope for a principal
// and an optionally requested branch filter.
//
// Tenants may never pass an explicit filter; scoped admins may only
// request their own branch. Both violations are hard authorization
// errors rather than silent no-ops, so bugs in calling code surface
// instead of being masked by filtering.
func ResolveScope(p Principal, requested *uint) (Scope, error) {
	switch p.Role {
	case RoleTenant:
		if requested != nil {
			return Scope{}, fmt.Errorf("%w: tenants cannot filter by branch", ErrAccessDenied)
		}
		return Scope{principal: p}, nil
	case RoleAdmin:
		if p.BranchID != nil {
			if requested != nil && *requested != *p.BranchID {
				return Scope{}, fmt.Errorf("%w: branch outside admin scope", ErrAccessDenied)
			}
			return Scope{principal: p, branch: p.BranchID}, nil
		}
		return Scope{principal: p, branch: requested}, nil
	default:
		return Scope{}, fmt.Errorf("%w: unknown role %q", ErrAccessDenied, p.Role)
	}
}

// Branch returns the branch filter to apply to queries, nil meaning
// no branch restriction.
func (s Scope) Branch() *uint {
	return s.branch
}

// TenantID returns the tenant user id all reads must additionally be
// filtered by, and whether the scope belongs to a tenant.
func (s Scope) TenantID() (uint, bool) {
	if s.principal.Role == RoleTenant {
		return s.principal.UserID, true
	}
	return 0, false
}

// Allows reports whether an entity owned by branchID is visible in
// this scope. Callers translate a miss to ErrNotFound so existence
// never leaks across branches.
func (s Scope) Allows(branchID uint) bool {
	return s.branch == nil || *s.branch == branchID
}
