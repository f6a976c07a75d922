package auth

import (
	"net/http"
	"strings"
	"time"
)

// Transport selects how the session token travels between client and server.
type Transport string

const (
	// TransportCookie stores the token in an http-only cookie.
	TransportCookie Transport = "cookie"
	// TransportHeader returns the token in the login body and expects
	// "Authorization: Bearer <token>" on later requests.
	TransportHeader Transport = "header"
)

// SessionOptions configures a Sessions transport.
type SessionOptions struct {
	Transport  Transport
	CookieName string
	SameSite   http.SameSite
	Secure     bool
}

// Sessions moves session tokens in and out of HTTP messages.
// Exactly one transport is active; the other is ignored on input.
type Sessions struct {
	opts SessionOptions
	now  func() time.Time
}

// NewSessions creates a Sessions. An empty cookie name defaults to "token".
func NewSessions(opts SessionOptions) *Sessions {
	if opts.Transport == "" {
		opts.Transport = TransportCookie
	}
	if opts.CookieName == "" {
		opts.CookieName = "token"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteNoneMode
	}
	return &Sessions{opts: opts, now: time.Now}
}

// Transport returns the active transport.
func (s *Sessions) Transport() Transport {
	return s.opts.Transport
}

// TokenInBody reports whether login must return the token in the response body.
func (s *Sessions) TokenInBody() bool {
	return s.opts.Transport == TransportHeader
}

// Deliver attaches the token to the response. In header mode it is a no-op.
func (s *Sessions) Deliver(w http.ResponseWriter, token string, expiresAt time.Time) {
	if s.opts.Transport != TransportCookie {
		return
	}
	maxAge := int(expiresAt.Sub(s.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, s.cookie(token, maxAge, expiresAt))
}

// Clear instructs the client to drop its session cookie. In header mode it is
// a no-op: the client discards its own copy.
func (s *Sessions) Clear(w http.ResponseWriter) {
	if s.opts.Transport != TransportCookie {
		return
	}
	http.SetCookie(w, s.cookie("", -1, time.Unix(0, 0)))
}

// Extract returns the token presented by the request, if any.
func (s *Sessions) Extract(r *http.Request) (string, bool) {
	switch s.opts.Transport {
	case TransportHeader:
		header := r.Header.Get("Authorization")
		if header == "" {
			return "", false
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	default:
		c, err := r.Cookie(s.opts.CookieName)
		if err != nil || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
}

func (s *Sessions) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}
}
