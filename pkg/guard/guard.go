// Package guard decides whether a page may render for the current session.
package guard

import (
	"net/http"
	"net/url"
	"strings"
)

// Session statuses, mirroring store.AuthStore.Status.
const (
	StatusLoading         = "loading"
	StatusAuthenticated   = "authenticated"
	StatusUnauthenticated = "unauthenticated"

	RoleAdmin = "ADMIN"

	ForbiddenMessage = "Access forbidden: Admin privileges required"
)

type Action int

const (
	Allow Action = iota
	Redirect
	Forbidden
)

type Decision struct {
	Action     Action
	Location   string // set for Redirect
	StatusCode int    // set for Forbidden
	Message    string
}

// LoginRedirect sends the visitor home with the login dialog open and a way back.
func LoginRedirect(path string) string {
	return "/?login=true&redirect=" + strings.ReplaceAll(url.QueryEscape(path), "+", "%20")
}

// RequireAuth lets everything but an unauthenticated session through. A session
// still loading is allowed so the page can render its own spinner.
func RequireAuth(status, path string) Decision {
	if status == StatusUnauthenticated {
		return Decision{Action: Redirect, Location: LoginRedirect(path)}
	}
	return Decision{Action: Allow}
}

func RequireAdmin(status, role, path string) Decision {
	if status == StatusUnauthenticated {
		return Decision{Action: Redirect, Location: LoginRedirect(path)}
	}
	if status == StatusAuthenticated && role != RoleAdmin {
		return Decision{Action: Forbidden, StatusCode: http.StatusForbidden, Message: ForbiddenMessage}
	}
	return Decision{Action: Allow}
}
