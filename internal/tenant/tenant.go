// Package tenant resolves which venue a request acts on.
//
// Guest requests name the venue themselves: by the path segment after /t/,
// the X-Venue-ID header, or the venueId query parameter, in that order.
// Admin requests never do; their venue comes from the session only.
package tenant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderVenueID = "X-Venue-ID"
	QueryVenueID  = "venueId"
	pathMarker    = "t"
)

var (
	ErrRequired = errors.New("tenant required")
	ErrInvalid  = errors.New("invalid tenant id")
)

// FromPath returns the segment that follows the first /t/ segment, or "".
func FromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == pathMarker {
			return parts[i+1]
		}
	}
	return ""
}

// Raw returns the first non-empty venue id candidate of r.
func Raw(r *http.Request) string {
	if v := FromPath(r.URL.Path); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get(HeaderVenueID)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get(QueryVenueID))
}

// Parse checks that raw has the canonical UUID shape.
func Parse(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, ErrRequired
	}
	// uuid.Parse also accepts braces and urn prefixes; only the plain
	// 36 character form is a valid venue id here.
	if len(raw) != 36 {
		return uuid.Nil, ErrInvalid
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalid
	}
	return id, nil
}

// Resolve derives the guest venue id from r.
func Resolve(r *http.Request) (uuid.UUID, error) {
	return Parse(Raw(r))
}

type ctxKey struct{}

func WithVenue(ctx context.Context, venueID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, venueID)
}

// VenueFrom returns the venue attached to ctx by the tenant middleware.
func VenueFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
