package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campus-events/models"
)

func TestEvaluate_NoDeadlineNoCap_AlwaysOpen(t *testing.T) {
	verdict := Evaluate(Policy{}, 100000, time.Now())

	assert.True(t, verdict.Open())
	assert.Empty(t, verdict.Reasons)
}

func TestEvaluate_DeadlineBoundary(t *testing.T) {
	deadline := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	policy := Policy{RegistrationDeadline: &deadline}

	before := Evaluate(policy, 0, deadline.Add(-time.Second))
	assert.True(t, before.Open())

	// The instant the deadline is reached registration is closed.
	exact := Evaluate(policy, 0, deadline)
	assert.False(t, exact.Open())
	assert.Equal(t, []models.ClosureReason{models.ReasonDeadlinePassed}, exact.Reasons)

	after := Evaluate(policy, 0, deadline.Add(time.Second))
	assert.False(t, after.Open())
}

func TestEvaluate_GracePeriodExtendsDeadline(t *testing.T) {
	deadline := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	policy := Policy{RegistrationDeadline: &deadline, GracePeriod: 5 * time.Minute}

	assert.True(t, Evaluate(policy, 0, deadline.Add(4*time.Minute)).Open())
	assert.False(t, Evaluate(policy, 0, deadline.Add(5*time.Minute)).Open())
}

func TestEvaluate_Capacity(t *testing.T) {
	policy := Policy{MaxParticipants: 50}
	now := time.Now()

	assert.True(t, Evaluate(policy, 49, now).Open())

	full := Evaluate(policy, 50, now)
	assert.False(t, full.Open())
	assert.Equal(t, []models.ClosureReason{models.ReasonCapacityReached}, full.Reasons)

	over := Evaluate(policy, 51, now)
	assert.False(t, over.Open())
}

func TestEvaluate_CapacityOfOne(t *testing.T) {
	policy := Policy{MaxParticipants: 1}

	assert.True(t, Evaluate(policy, 0, time.Now()).Open())
	assert.False(t, Evaluate(policy, 1, time.Now()).Open())
}

func TestEvaluate_ZeroCapMeansUncapped(t *testing.T) {
	assert.True(t, Evaluate(Policy{MaxParticipants: 0}, 99999, time.Now()).Open())
}

func TestEvaluate_BothReasonsReported(t *testing.T) {
	deadline := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	policy := Policy{RegistrationDeadline: &deadline, MaxParticipants: 10}

	verdict := Evaluate(policy, 10, deadline.Add(time.Hour))

	assert.False(t, verdict.Open())
	assert.True(t, verdict.Has(models.ReasonDeadlinePassed))
	assert.True(t, verdict.Has(models.ReasonCapacityReached))
	assert.Len(t, verdict.Reasons, 2)
}

func TestEvaluate_Idempotent(t *testing.T) {
	deadline := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	policy := Policy{RegistrationDeadline: &deadline, MaxParticipants: 10}
	now := deadline.Add(time.Minute)

	first := Evaluate(policy, 10, now)
	second := Evaluate(policy, 10, now)

	assert.Equal(t, first, second)
}

func TestPolicyFor(t *testing.T) {
	deadline := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	event := &models.Event{
		RegistrationDeadline: &deadline,
		MaxParticipants:      25,
	}

	policy := PolicyFor(event, 5*time.Minute)

	assert.Equal(t, &deadline, policy.RegistrationDeadline)
	assert.Equal(t, 25, policy.MaxParticipants)
	assert.Equal(t, 5*time.Minute, policy.GracePeriod)
}
