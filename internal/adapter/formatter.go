package adapter

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kapu/randomuser-swipe-go/internal/constants"
	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/interaction"
	"github.com/kapu/randomuser-swipe-go/internal/service/fetch"
	"github.com/kapu/randomuser-swipe-go/internal/util"
	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

const dateLayout = "2006-01-02"

// Formatter renders profiles and fetch status as terminal text
type Formatter struct {
	lineLimit int
}

// NewFormatter creates a Formatter. A non-positive limit uses the default card width.
func NewFormatter(lineLimit int) *Formatter {
	if lineLimit <= 0 {
		lineLimit = constants.StringLimits.CardLine
	}
	return &Formatter{lineLimit: lineLimit}
}

// AvatarURL returns the best available picture: large, then medium, then thumbnail.
func AvatarURL(p domain.Profile) *url.URL {
	switch {
	case p.AvatarLarge != nil:
		return p.AvatarLarge
	case p.AvatarMedium != nil:
		return p.AvatarMedium
	default:
		return p.AvatarThumbnail
	}
}

type cardView struct {
	Title    string
	Username string
	Lines    []string
	Hint     string
	Width    int
	Limit    int
}

// Card renders the profile on screen together with the card's gesture state.
func (f *Formatter) Card(p *domain.Profile, card interaction.State) string {
	if p == nil {
		return "(no profile yet)"
	}

	view := cardView{
		Title:    cardTitle(p),
		Username: p.Username,
		Lines:    f.detailLines(p),
		Hint:     cardHint(card),
		Width:    f.lineLimit + 2,
		Limit:    f.lineLimit,
	}

	out, err := executeFormatterTemplate("card", view)
	if err != nil {
		return fmt.Sprintf("%s\n%s", view.Title, view.Hint)
	}
	return out
}

func cardTitle(p *domain.Profile) string {
	title := p.FullName
	if p.Age != nil {
		title = fmt.Sprintf("%s, %d", title, *p.Age)
	}
	if p.Nationality != "" {
		title = fmt.Sprintf("%s (%s)", title, p.Nationality)
	}
	return title
}

func (f *Formatter) detailLines(p *domain.Profile) []string {
	lines := make([]string, 0, 10)
	add := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, fmt.Sprintf("%-9s %s", label, value))
	}

	add("email", p.Email)
	add("phone", p.Phone)
	add("cell", p.Cell)
	add("location", util.JoinNonEmpty(", ", p.City, p.State, p.CountryName))
	add("postcode", p.Postcode)
	if p.HasCoordinates() {
		add("coords", fmt.Sprintf("%.4f, %.4f", *p.Latitude, *p.Longitude))
	}
	add("timezone", formatTimezone(p.TimezoneOffset, p.TimezoneDescription))
	if p.DateOfBirth != nil {
		add("born", p.DateOfBirth.Format(dateLayout))
	}
	if p.RegisteredAt != nil {
		joined := p.RegisteredAt.Format(dateLayout)
		if p.RegisteredAge != nil {
			joined = fmt.Sprintf("%s (%d years)", joined, *p.RegisteredAge)
		}
		add("joined", joined)
	}
	if avatar := AvatarURL(*p); avatar != nil {
		add("avatar", avatar.String())
	}
	return lines
}

func formatTimezone(offset, description string) string {
	switch {
	case offset != "" && description != "":
		return fmt.Sprintf("UTC%s (%s)", offset, description)
	case offset != "":
		return "UTC" + offset
	default:
		return description
	}
}

func cardHint(card interaction.State) string {
	switch card.Phase {
	case interaction.PhaseIdle:
		return "[r] reject   [a] accept   [d <dx>] drag"
	case interaction.PhaseDragging:
		switch {
		case card.Offset > 0:
			return fmt.Sprintf(">> accept? offset %+.0f, tilt %.1f deg", card.Offset, card.Rotation())
		case card.Offset < 0:
			return fmt.Sprintf("<< reject? offset %+.0f, tilt %.1f deg", card.Offset, card.Rotation())
		default:
			return "dragging"
		}
	case interaction.PhaseResolving:
		if card.Direction == domain.DecisionAccept {
			return "accepted >>"
		}
		return "<< rejected"
	case interaction.PhaseSettlingBack:
		return "settling back"
	case interaction.PhaseDone:
		return fmt.Sprintf("decided: %s", card.Direction)
	default:
		return ""
	}
}

// Status renders the fetch state as a single line.
func (f *Formatter) Status(state fetch.State) string {
	switch state.Status {
	case fetch.StatusIdle:
		return "Idle"
	case fetch.StatusLoading:
		return "Loading next profile..."
	case fetch.StatusLoaded:
		if state.Profile != nil {
			return fmt.Sprintf("Showing %s", state.Profile.FullName)
		}
		return "Loaded"
	case fetch.StatusFailed:
		return f.formatFailure(state)
	default:
		return state.Status.String()
	}
}

func (f *Formatter) formatFailure(state fetch.State) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Could not load a profile (%s): %s", errors.Kind(state.Err), state.Reason))

	var serverErr *errors.ServerError
	if stderrors.As(state.Err, &serverErr) && serverErr.RetryAfter > 0 {
		sb.WriteString(fmt.Sprintf(". Server asks to wait %s", serverErr.RetryAfter))
	}

	sb.WriteString(". Type 'retry' to try again.")
	return sb.String()
}

type helpEntry struct {
	Keys string
	Text string
}

// Help lists the terminal commands.
func (f *Formatter) Help() string {
	entries := []helpEntry{
		{Keys: "a", Text: "accept the card"},
		{Keys: "r", Text: "reject the card"},
		{Keys: "d <dx>", Text: "drag the card horizontally"},
		{Keys: "u <dx>", Text: "release the drag at dx"},
		{Keys: "retry", Text: "fetch again after a failure"},
		{Keys: "h", Text: "show this help"},
		{Keys: "q", Text: "quit"},
	}

	out, err := executeFormatterTemplate("help", entries)
	if err != nil {
		return "a | r | d <dx> | u <dx> | retry | h | q"
	}
	return out
}

// FormatError formats an error message
func (f *Formatter) FormatError(message string) string {
	return fmt.Sprintf("error: %s", message)
}
