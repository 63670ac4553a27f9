// Package routes gates client-side navigation. The route table itself
// is caller-supplied configuration; the guard only reads each route's
// auth metadata against the current session.
package routes

import (
	"schoolcomm/client/internal/models"
	"schoolcomm/client/internal/session"
)

// Route is the per-route metadata the guard consults.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool

	// Roles, when non-empty, lists the role slugs allowed in.
	Roles []string
}

type Action int

const (
	Allow Action = iota
	RedirectLogin
	RedirectForbidden
)

// Decision tells the navigation layer what to do; Redirect is set for
// the two redirect actions.
type Decision struct {
	Action   Action
	Redirect string
}

type Guard struct {
	Sessions *session.Store

	// LoginRoute and ForbiddenRoute are the redirect destinations;
	// ForbiddenRoute is typically the dashboard.
	LoginRoute     string
	ForbiddenRoute string
}

func (g Guard) Decide(route Route) Decision {
	if !route.RequiresAuth {
		return Decision{Action: Allow}
	}
	if !g.Sessions.Authenticated() {
		return Decision{Action: RedirectLogin, Redirect: g.LoginRoute}
	}
	if len(route.Roles) == 0 {
		return Decision{Action: Allow}
	}

	user := g.Sessions.User()
	if user == nil || !hasRole(user, route.Roles) {
		return Decision{Action: RedirectForbidden, Redirect: g.ForbiddenRoute}
	}
	return Decision{Action: Allow}
}

func hasRole(user *models.User, roles []string) bool {
	for _, role := range roles {
		if string(user.Role.Slug) == role {
			return true
		}
	}
	return false
}
