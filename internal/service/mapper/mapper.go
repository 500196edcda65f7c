// Package mapper turns untrusted directory records into domain profiles.
package mapper

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/util"
)

// timestampLayouts are tried in order: fractional seconds first, then whole seconds.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
}

// Map never fails. A missing or malformed field becomes absent in the result.
func Map(raw domain.RawProfilePayload) domain.Profile {
	p := domain.Profile{
		ID:          resolveID(raw.Login),
		Gender:      util.Deref(raw.Gender),
		FullName:    DisplayName(raw.Name),
		Email:       util.Deref(raw.Email),
		Phone:       util.Deref(raw.Phone),
		Cell:        util.Deref(raw.Cell),
		Nationality: strings.ToUpper(strings.TrimSpace(util.Deref(raw.Nat))),
	}

	if raw.Name != nil {
		p.Title = strings.TrimSpace(util.Deref(raw.Name.Title))
	}
	if raw.Login != nil {
		p.Username = util.Deref(raw.Login.Username)
	}
	if raw.DOB != nil {
		p.DateOfBirth = ParseTimestamp(util.Deref(raw.DOB.Date))
		p.Age = raw.DOB.Age
	}
	if raw.Registered != nil {
		p.RegisteredAt = ParseTimestamp(util.Deref(raw.Registered.Date))
		p.RegisteredAge = raw.Registered.Age
	}
	if raw.Picture != nil {
		p.AvatarLarge = parseURL(raw.Picture.Large)
		p.AvatarMedium = parseURL(raw.Picture.Medium)
		p.AvatarThumbnail = parseURL(raw.Picture.Thumbnail)
	}

	if loc := raw.Location; loc != nil {
		p.City = util.Deref(loc.City)
		p.State = util.Deref(loc.State)
		p.CountryName = util.Deref(loc.Country)
		if loc.Postcode != nil {
			p.Postcode, _ = loc.Postcode.Value()
		}
		if loc.Coordinates != nil {
			p.Latitude = ParseCoordinate(util.Deref(loc.Coordinates.Latitude))
			p.Longitude = ParseCoordinate(util.Deref(loc.Coordinates.Longitude))
		}
		if loc.Timezone != nil {
			p.TimezoneOffset = util.Deref(loc.Timezone.Offset)
			p.TimezoneDescription = util.Deref(loc.Timezone.Description)
		}
	}

	return p
}

// resolveID prefers the directory's login UUID. Without one a random identifier is
// generated here, once, so the mapped profile keeps it for its whole lifetime.
func resolveID(login *domain.RawLogin) string {
	if login != nil {
		if id := strings.TrimSpace(util.Deref(login.UUID)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

// DisplayName joins first and last name, then falls back to the title, then to
// domain.FallbackName. The result is never empty.
func DisplayName(name *domain.RawName) string {
	if name == nil {
		return domain.FallbackName
	}
	if full := util.JoinNonEmpty(" ", util.Deref(name.First), util.Deref(name.Last)); full != "" {
		return full
	}
	if title := strings.TrimSpace(util.Deref(name.Title)); title != "" {
		return title
	}
	return domain.FallbackName
}

// ParseTimestamp reads an ISO-8601 instant with or without fractional seconds and
// returns it in UTC, or nil.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ParseCoordinate reads a decimal string. Non-numeric and non-finite input yield nil.
func ParseCoordinate(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseURL(s *string) *url.URL {
	raw := strings.TrimSpace(util.Deref(s))
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	// Keep the form String() produces so a cached copy parses back identically.
	canonical, err := url.Parse(u.String())
	if err != nil {
		return nil
	}
	return canonical
}
