package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifyInSubscriptionOrder(t *testing.T) {
	var obs Observers[int]
	var got []string

	obs.Subscribe(func(v int) { got = append(got, "a") })
	obs.Subscribe(func(v int) { got = append(got, "b") })
	obs.Notify(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribe(t *testing.T) {
	var obs Observers[string]
	calls := 0

	cancel := obs.Subscribe(func(string) { calls++ })
	obs.Notify("x")
	cancel()
	obs.Notify("y")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, obs.Len())
}

func TestSubscribeDuringNotifyTakesEffectNextTime(t *testing.T) {
	var obs Observers[int]
	late := 0

	obs.Subscribe(func(int) {
		if obs.Len() == 1 {
			obs.Subscribe(func(int) { late++ })
		}
	})

	obs.Notify(1)
	assert.Equal(t, 0, late)
	obs.Notify(2)
	assert.Equal(t, 1, late)
}
