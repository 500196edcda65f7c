package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Envelope is the directory response wrapper.
type Envelope struct {
	Results []RawProfilePayload `json:"results"`
}

// RawProfilePayload mirrors one directory record. Every field is optional.
type RawProfilePayload struct {
	Gender     *string      `json:"gender,omitempty"`
	Name       *RawName     `json:"name,omitempty"`
	Location   *RawLocation `json:"location,omitempty"`
	Email      *string      `json:"email,omitempty"`
	Login      *RawLogin    `json:"login,omitempty"`
	DOB        *RawDatedAge `json:"dob,omitempty"`
	Registered *RawDatedAge `json:"registered,omitempty"`
	Phone      *string      `json:"phone,omitempty"`
	Cell       *string      `json:"cell,omitempty"`
	Picture    *RawPicture  `json:"picture,omitempty"`
	Nat        *string      `json:"nat,omitempty"`
}

type RawName struct {
	Title *string `json:"title,omitempty"`
	First *string `json:"first,omitempty"`
	Last  *string `json:"last,omitempty"`
}

type RawLocation struct {
	Street      *RawStreet      `json:"street,omitempty"`
	City        *string         `json:"city,omitempty"`
	State       *string         `json:"state,omitempty"`
	Country     *string         `json:"country,omitempty"`
	Postcode    *Postcode       `json:"postcode,omitempty"`
	Coordinates *RawCoordinates `json:"coordinates,omitempty"`
	Timezone    *RawTimezone    `json:"timezone,omitempty"`
}

type RawStreet struct {
	Number *int    `json:"number,omitempty"`
	Name   *string `json:"name,omitempty"`
}

// RawCoordinates arrive as decimal strings.
type RawCoordinates struct {
	Latitude  *string `json:"latitude,omitempty"`
	Longitude *string `json:"longitude,omitempty"`
}

type RawTimezone struct {
	Offset      *string `json:"offset,omitempty"`
	Description *string `json:"description,omitempty"`
}

type RawLogin struct {
	UUID     *string `json:"uuid,omitempty"`
	Username *string `json:"username,omitempty"`
}

// RawDatedAge is the shape shared by dob and registered.
type RawDatedAge struct {
	Date *string `json:"date,omitempty"`
	Age  *int    `json:"age,omitempty"`
}

type RawPicture struct {
	Large     *string `json:"large,omitempty"`
	Medium    *string `json:"medium,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
}

type PostcodeKind int

const (
	PostcodeText PostcodeKind = iota
	PostcodeInt
)

// Postcode is sent either as a JSON number or as a JSON string depending on the
// record's country.
type Postcode struct {
	Kind PostcodeKind
	Int  int64
	Text string
}

// PostcodeFromInt wraps a numeric postcode.
func PostcodeFromInt(v int64) Postcode {
	return Postcode{Kind: PostcodeInt, Int: v}
}

// PostcodeFromText wraps a textual postcode.
func PostcodeFromText(v string) Postcode {
	return Postcode{Kind: PostcodeText, Text: v}
}

// UnmarshalJSON tries an integer, then a string, and otherwise settles on empty
// text. It never returns an error so a strange postcode cannot sink the record.
func (p *Postcode) UnmarshalJSON(data []byte) error {
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*p = PostcodeFromInt(i)
		return nil
	}

	// 10001.0 is still an integer postcode
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			*p = PostcodeFromInt(int64(f))
		} else {
			*p = PostcodeFromText("")
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = PostcodeFromText(s)
		return nil
	}

	*p = PostcodeFromText("")
	return nil
}

// Value is the normalized string form. Empty text is reported as absent.
func (p Postcode) Value() (string, bool) {
	switch p.Kind {
	case PostcodeInt:
		return strconv.FormatInt(p.Int, 10), true
	default:
		if p.Text == "" {
			return "", false
		}
		return p.Text, true
	}
}
