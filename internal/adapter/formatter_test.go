package adapter

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/interaction"
	"github.com/kapu/randomuser-swipe-go/internal/service/fetch"
	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestAvatarURLFallsBackBySize(t *testing.T) {
	large := mustURL(t, "https://example.com/large.jpg")
	medium := mustURL(t, "https://example.com/med.jpg")
	thumb := mustURL(t, "https://example.com/thumb.jpg")

	assert.Equal(t, large, AvatarURL(domain.Profile{AvatarLarge: large, AvatarMedium: medium, AvatarThumbnail: thumb}))
	assert.Equal(t, medium, AvatarURL(domain.Profile{AvatarMedium: medium, AvatarThumbnail: thumb}))
	assert.Equal(t, thumb, AvatarURL(domain.Profile{AvatarThumbnail: thumb}))
	assert.Nil(t, AvatarURL(domain.Profile{}))
}

func TestCardRendersAvailableFields(t *testing.T) {
	age := 36
	lat := 51.5072
	lon := -0.1276
	dob := time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)
	p := &domain.Profile{
		ID:             "id",
		FullName:       "Ada Lovelace",
		Age:            &age,
		Nationality:    "GB",
		Username:       "countess",
		Email:          "ada@example.com",
		City:           "London",
		CountryName:    "United Kingdom",
		Postcode:       "EC1A 1BB",
		Latitude:       &lat,
		Longitude:      &lon,
		DateOfBirth:    &dob,
		TimezoneOffset: "+0:00",
		AvatarMedium:   mustURL(t, "https://example.com/med.jpg"),
	}

	out := NewFormatter(60).Card(p, interaction.State{Phase: interaction.PhaseIdle})

	assert.Contains(t, out, "| Ada Lovelace, 36 (GB)")
	assert.Contains(t, out, "| @countess")
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "London, United Kingdom")
	assert.Contains(t, out, "EC1A 1BB")
	assert.Contains(t, out, "51.5072, -0.1276")
	assert.Contains(t, out, "1815-12-10")
	assert.Contains(t, out, "UTC+0:00")
	assert.Contains(t, out, "https://example.com/med.jpg")
	assert.NotContains(t, out, "phone")
	assert.True(t, strings.HasSuffix(out, "[r] reject   [a] accept   [d <dx>] drag"))
}

func TestCardHidesHalfCoordinates(t *testing.T) {
	lat := 10.0
	p := &domain.Profile{FullName: "Unknown", Latitude: &lat}

	out := NewFormatter(0).Card(p, interaction.State{})
	assert.NotContains(t, out, "coords")
}

func TestCardTruncatesLongLines(t *testing.T) {
	p := &domain.Profile{FullName: strings.Repeat("x", 40)}

	out := NewFormatter(10).Card(p, interaction.State{})
	assert.Contains(t, out, "| xxxxxxxxxx...")
	assert.NotContains(t, out, strings.Repeat("x", 11))
}

func TestCardHintFollowsGesture(t *testing.T) {
	f := NewFormatter(0)
	p := &domain.Profile{FullName: "Ada"}

	assert.Contains(t, f.Card(p, interaction.State{Phase: interaction.PhaseDragging, Offset: 60}), ">> accept? offset +60, tilt 3.0 deg")
	assert.Contains(t, f.Card(p, interaction.State{Phase: interaction.PhaseDragging, Offset: -40}), "<< reject? offset -40, tilt -2.0 deg")
	assert.Contains(t, f.Card(p, interaction.State{Phase: interaction.PhaseResolving, Direction: domain.DecisionAccept}), "accepted >>")
	assert.Contains(t, f.Card(p, interaction.State{Phase: interaction.PhaseResolving, Direction: domain.DecisionReject}), "<< rejected")
	assert.Contains(t, f.Card(p, interaction.State{Phase: interaction.PhaseDone, Direction: domain.DecisionReject}), "decided: reject")
}

func TestCardWithoutProfile(t *testing.T) {
	assert.Equal(t, "(no profile yet)", NewFormatter(0).Card(nil, interaction.State{}))
}

func TestStatus(t *testing.T) {
	f := NewFormatter(0)

	assert.Equal(t, "Loading next profile...", f.Status(fetch.Loading()))
	assert.Equal(t, "Showing Ada", f.Status(fetch.Loaded(&domain.Profile{FullName: "Ada"})))

	failed := f.Status(fetch.Failed(errors.NewServerError(429, 30*time.Second, nil)))
	assert.Contains(t, failed, "directory returned status 429")
	assert.Contains(t, failed, errors.CodeServer)
	assert.Contains(t, failed, "wait 30s")
	assert.Contains(t, failed, "retry")
}

func TestHelpListsCommands(t *testing.T) {
	help := NewFormatter(0).Help()

	assert.True(t, strings.HasPrefix(help, "Commands"))
	for _, key := range []string{"a ", "r ", "d <dx>", "u <dx>", "retry", "q "} {
		assert.Contains(t, help, "  "+key)
	}
}
