package client

import "github.com/goliatone/go-school/client/session"

// DefaultLandingPath is where a login lands without a return location
const DefaultLandingPath = "/dashboard"

// Location identifies the page being visited
type Location struct {
	Pathname string
	Search   string
}

// RedirectState travels with a guard redirect
type RedirectState struct {
	From *Location
}

// Decision tells the caller how to handle a protected page
type Decision struct {
	Loading  bool
	Render   bool
	Redirect string
	Replace  bool
	State    RedirectState
}

// Guard decides whether a protected page can render for the session state
func Guard(state session.State, location Location) Decision {
	if state.Loading {
		return Decision{Loading: true}
	}

	if state.Identity == nil {
		from := location
		return Decision{
			Redirect: "/",
			Replace:  true,
			State:    RedirectState{From: &from},
		}
	}

	return Decision{Render: true}
}

// RedirectAfterLogin returns the page the guard sent the user away from
func RedirectAfterLogin(state RedirectState) string {
	if state.From != nil && state.From.Pathname != "" {
		return state.From.Pathname
	}
	return DefaultLandingPath
}

// SignedInAs is the label shown for the signed in user
func SignedInAs(identity session.Identity) string {
	if email := identity.Email(); email != "" {
		return email
	}
	if username, ok := identity["username"].(string); ok && username != "" {
		return username
	}
	return "User"
}
