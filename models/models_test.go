package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_StartsAt(t *testing.T) {
	event := Event{
		EventDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		EventTime: "10:30",
	}

	assert.Equal(t, time.Date(2026, 9, 12, 10, 30, 0, 0, time.UTC), event.StartsAt())
}

func TestEvent_StartsAt_MalformedTimeFallsBackToMidnight(t *testing.T) {
	event := Event{
		EventDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		EventTime: "later",
	}

	assert.Equal(t, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), event.StartsAt())
}

func TestVerdict_Open(t *testing.T) {
	assert.True(t, (Verdict{}).Open())
	assert.False(t, (Verdict{Reasons: []ClosureReason{ReasonDeadlinePassed}}).Open())
}

func TestVerdict_Has(t *testing.T) {
	v := Verdict{Reasons: []ClosureReason{ReasonDeadlinePassed, ReasonCapacityReached}}

	assert.True(t, v.Has(ReasonDeadlinePassed))
	assert.True(t, v.Has(ReasonCapacityReached))
	assert.False(t, (Verdict{}).Has(ReasonDeadlinePassed))
}
