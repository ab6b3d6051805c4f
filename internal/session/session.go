// Package session encodes the admin session carried in the session cookie.
// The payload is an HS256 JWT so a client cannot forge or edit its venue or
// role.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

const (
	CookieName = "session"
	DefaultTTL = 7 * 24 * time.Hour
	issuer     = "tableorder"
)

var (
	ErrMissing = errors.New("session missing")
	ErrInvalid = errors.New("session invalid")
)

type User struct {
	ID      uuid.UUID   `json:"id"`
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	VenueID uuid.UUID   `json:"venueId"`
	Role    domain.Role `json:"role"`
}

// Session is the decoded cookie payload. VenueID is the active venue and
// always equals User.VenueID.
type Session struct {
	User    User      `json:"user"`
	VenueID uuid.UUID `json:"venueId"`
}

func New(u domain.User, venueID uuid.UUID, role domain.Role) Session {
	return Session{
		User: User{
			ID:      u.ID,
			Email:   u.Email,
			Name:    u.Name,
			VenueID: venueID,
			Role:    role,
		},
		VenueID: venueID,
	}
}

type claims struct {
	User    User      `json:"user"`
	VenueID uuid.UUID `json:"venueId"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration, secure bool) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Encode signs s and returns the token with its expiry.
func (c *Codec) Encode(s Session) (string, time.Time, error) {
	const op = "session.Codec.Encode"

	now := c.now()
	exp := now.Add(c.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		User:    s.User,
		VenueID: s.VenueID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.User.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, exp, nil
}

// Decode verifies the signature and expiry and checks the payload shape.
func (c *Codec) Decode(raw string) (*Session, error) {
	if raw == "" {
		return nil, ErrMissing
	}

	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if cl.User.ID == uuid.Nil || cl.VenueID == uuid.Nil ||
		cl.User.VenueID != cl.VenueID || !cl.User.Role.Valid() {
		return nil, ErrInvalid
	}

	return &Session{User: cl.User, VenueID: cl.VenueID}, nil
}

func (c *Codec) Cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(c.now()).Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *Codec) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the session middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
