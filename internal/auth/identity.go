package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/examgate/examgate/internal/session"
)

// DefaultUserID is the shared placeholder identity of the anonymous
// deployment mode, where students only supply a display name and email.
const DefaultUserID = "default-user"

// IdentityResolver maps an inbound start request to the student identity
// recorded on the attempt. Deployments choose anonymous or token-based
// resolution; the engine itself never branches on the mode.
type IdentityResolver interface {
	Resolve(r *http.Request, name, email string) (session.StudentIdentity, error)
}

// AnonymousResolver trusts the submitted name/email and records everyone
// under DefaultUserID.
type AnonymousResolver struct{}

func (AnonymousResolver) Resolve(_ *http.Request, name, email string) (session.StudentIdentity, error) {
	if name == "" {
		name = "Anonymous Student"
	}
	if email == "" {
		email = "student@example.com"
	}
	return session.StudentIdentity{UserID: DefaultUserID, Name: name, Email: email}, nil
}

// TokenResolver derives the identity from the validated bearer token, so
// attempts are tied to the authenticated user.
type TokenResolver struct {
	Svc *AuthService
}

func (t TokenResolver) Resolve(r *http.Request, name, email string) (session.StudentIdentity, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return session.StudentIdentity{}, errors.New("authentication required")
	}
	claims, err := t.Svc.Parse(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return session.StudentIdentity{}, err
	}
	id := session.StudentIdentity{UserID: claims.Sub, Name: claims.Name, Email: claims.Email}
	if id.Name == "" {
		id.Name = name
	}
	if id.Email == "" {
		id.Email = email
	}
	return id, nil
}
