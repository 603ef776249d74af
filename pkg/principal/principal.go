// Package principal carries the authenticated caller through a request.
//
// The gateway derives a Principal from a verified access token and forwards
// it as plain headers; downstream services rebuild it from those headers and
// keep it in the request context. Nothing here is cached between requests.
package principal

import (
	"context"
	"net/http"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return r, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

const (
	HeaderUserID    = "X-User-Id"
	HeaderEmail     = "X-User-Email"
	HeaderRole      = "X-Role"
	HeaderFirstname = "X-Firstname"
	HeaderLastname  = "X-Lastname"
)

// Headers lists every propagation header. The gateway strips all of them
// from inbound client requests.
var Headers = []string{HeaderUserID, HeaderEmail, HeaderRole, HeaderFirstname, HeaderLastname}

type Principal struct {
	UserID    string
	Email     string
	Firstname string
	Lastname  string
	Role      Role
}

func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Apply writes p as propagation headers, replacing any existing values.
func (p Principal) Apply(h http.Header) {
	h.Set(HeaderUserID, p.UserID)
	h.Set(HeaderEmail, p.Email)
	h.Set(HeaderRole, string(p.Role))
	h.Set(HeaderFirstname, p.Firstname)
	h.Set(HeaderLastname, p.Lastname)
}

func Strip(h http.Header) {
	for _, k := range Headers {
		h.Del(k)
	}
}

// FromHeaders returns false when X-User-Id is absent, meaning an anonymous caller.
func FromHeaders(h http.Header) (Principal, bool) {
	id := strings.TrimSpace(h.Get(HeaderUserID))
	if id == "" {
		return Principal{}, false
	}
	return Principal{
		UserID:    id,
		Email:     h.Get(HeaderEmail),
		Firstname: h.Get(HeaderFirstname),
		Lastname:  h.Get(HeaderLastname),
		Role:      Role(strings.ToUpper(strings.TrimSpace(h.Get(HeaderRole)))),
	}, true
}

type ctxKey struct{}

func IntoContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
