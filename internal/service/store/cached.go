package store

import (
	"net/url"
	"time"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
)

// CachedProfile is the persisted projection of domain.Profile: URLs as strings,
// instants as RFC 3339 timestamps.
type CachedProfile struct {
	ID       string `json:"id"`
	Gender   string `json:"gender,omitempty"`
	FullName string `json:"fullName"`
	Title    string `json:"title,omitempty"`

	Age         *int       `json:"age,omitempty"`
	DateOfBirth *time.Time `json:"dobDate,omitempty"`

	Nationality string   `json:"country,omitempty"`
	CountryName string   `json:"countryName,omitempty"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	Postcode    string   `json:"postcode,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Cell  string `json:"cell,omitempty"`

	AvatarURL       string `json:"avatarURL,omitempty"`
	AvatarMediumURL string `json:"avatarMediumURL,omitempty"`
	AvatarThumbURL  string `json:"avatarThumbURL,omitempty"`

	Username string `json:"username,omitempty"`

	RegisteredDate      *time.Time `json:"registeredDate,omitempty"`
	RegisteredAge       *int       `json:"registeredAge,omitempty"`
	TimezoneOffset      string     `json:"timezoneOffset,omitempty"`
	TimezoneDescription string     `json:"timezoneDescription,omitempty"`
}

// NewCachedProfile projects p into its stored form.
func NewCachedProfile(p domain.Profile) CachedProfile {
	return CachedProfile{
		ID:                  p.ID,
		Gender:              p.Gender,
		FullName:            p.FullName,
		Title:               p.Title,
		Age:                 p.Age,
		DateOfBirth:         p.DateOfBirth,
		Nationality:         p.Nationality,
		CountryName:         p.CountryName,
		City:                p.City,
		State:               p.State,
		Postcode:            p.Postcode,
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
		Email:               p.Email,
		Phone:               p.Phone,
		Cell:                p.Cell,
		AvatarURL:           urlString(p.AvatarLarge),
		AvatarMediumURL:     urlString(p.AvatarMedium),
		AvatarThumbURL:      urlString(p.AvatarThumbnail),
		Username:            p.Username,
		RegisteredDate:      p.RegisteredAt,
		RegisteredAge:       p.RegisteredAge,
		TimezoneOffset:      p.TimezoneOffset,
		TimezoneDescription: p.TimezoneDescription,
	}
}

// Profile rebuilds the domain profile, normalizing instants to UTC.
func (c CachedProfile) Profile() domain.Profile {
	return domain.Profile{
		ID:                  c.ID,
		Gender:              c.Gender,
		FullName:            c.FullName,
		Title:               c.Title,
		Age:                 c.Age,
		DateOfBirth:         utc(c.DateOfBirth),
		Nationality:         c.Nationality,
		CountryName:         c.CountryName,
		City:                c.City,
		State:               c.State,
		Postcode:            c.Postcode,
		Latitude:            c.Latitude,
		Longitude:           c.Longitude,
		Email:               c.Email,
		Phone:               c.Phone,
		Cell:                c.Cell,
		AvatarLarge:         parseURL(c.AvatarURL),
		AvatarMedium:        parseURL(c.AvatarMediumURL),
		AvatarThumbnail:     parseURL(c.AvatarThumbURL),
		Username:            c.Username,
		RegisteredAt:        utc(c.RegisteredDate),
		RegisteredAge:       c.RegisteredAge,
		TimezoneOffset:      c.TimezoneOffset,
		TimezoneDescription: c.TimezoneDescription,
	}
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func parseURL(s string) *url.URL {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
