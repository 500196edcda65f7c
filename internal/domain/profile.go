package domain

import (
	"net/url"
	"time"
)

// FallbackName is shown when a record carries neither a name nor a title.
const FallbackName = "Unknown"

// Profile is the normalized form of one directory record. Optional text fields use
// "" for absent; optional numbers, instants and URLs use nil.
type Profile struct {
	ID       string
	Gender   string
	FullName string
	Title    string

	Age         *int
	DateOfBirth *time.Time

	Nationality string
	CountryName string
	City        string
	State       string
	Postcode    string
	Latitude    *float64
	Longitude   *float64

	Email string
	Phone string
	Cell  string

	AvatarLarge     *url.URL
	AvatarMedium    *url.URL
	AvatarThumbnail *url.URL

	Username string

	RegisteredAt        *time.Time
	RegisteredAge       *int
	TimezoneOffset      string
	TimezoneDescription string
}

// HasCoordinates reports whether both coordinates resolved.
func (p *Profile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
