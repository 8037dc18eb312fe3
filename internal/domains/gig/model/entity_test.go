package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from GigStatus
		to   GigStatus
		want bool
	}{
		{GigStatusDraft, GigStatusPosted, true},
		{GigStatusPosted, GigStatusActive, true},
		{GigStatusPosted, GigStatusAssigned, true},
		{GigStatusActive, GigStatusAssigned, true},
		{GigStatusAssigned, GigStatusInProgress, true},
		{GigStatusInProgress, GigStatusCompleted, true},

		// cancelled is reachable from any non-terminal state
		{GigStatusDraft, GigStatusCancelled, true},
		{GigStatusPosted, GigStatusCancelled, true},
		{GigStatusInProgress, GigStatusCancelled, true},

		// expired only from posted/active
		{GigStatusPosted, GigStatusExpired, true},
		{GigStatusActive, GigStatusExpired, true},
		{GigStatusDraft, GigStatusExpired, false},
		{GigStatusAssigned, GigStatusExpired, false},

		// no backward moves
		{GigStatusCompleted, GigStatusPosted, false},
		{GigStatusAssigned, GigStatusPosted, false},
		{GigStatusInProgress, GigStatusAssigned, false},
		{GigStatusActive, GigStatusDraft, false},

		// no skipping forward
		{GigStatusDraft, GigStatusAssigned, false},
		{GigStatusPosted, GigStatusCompleted, false},
		{GigStatusAssigned, GigStatusCompleted, false},

		// terminal states are absorbing
		{GigStatusCancelled, GigStatusPosted, false},
		{GigStatusExpired, GigStatusActive, false},
		{GigStatusCompleted, GigStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestEffectiveStatusLazyExpiry(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		status    GigStatus
		expiresAt *time.Time
		want      GigStatus
	}{
		{"posted past deadline", GigStatusPosted, &past, GigStatusExpired},
		{"active past deadline", GigStatusActive, &past, GigStatusExpired},
		{"posted before deadline", GigStatusPosted, &future, GigStatusPosted},
		{"posted without deadline", GigStatusPosted, nil, GigStatusPosted},
		{"assigned past deadline keeps status", GigStatusAssigned, &past, GigStatusAssigned},
		{"draft past deadline keeps status", GigStatusDraft, &past, GigStatusDraft},
		{"exactly at deadline reads expired", GigStatusPosted, &now, GigStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Gig{Status: tt.status, ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, g.EffectiveStatus(now))
		})
	}
}

func TestIsAcceptingApplications(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	assert.True(t, (&Gig{Status: GigStatusPosted}).IsAcceptingApplications(now))
	assert.True(t, (&Gig{Status: GigStatusActive}).IsAcceptingApplications(now))
	assert.False(t, (&Gig{Status: GigStatusDraft}).IsAcceptingApplications(now))
	assert.False(t, (&Gig{Status: GigStatusAssigned}).IsAcceptingApplications(now))
	assert.False(t, (&Gig{Status: GigStatusPosted, ExpiresAt: &past}).IsAcceptingApplications(now))
}

func TestAcceptedApplication(t *testing.T) {
	g := &Gig{Applications: []Application{
		{Status: ApplicationStatusPending},
		{Status: ApplicationStatusRejected},
	}}
	assert.Nil(t, g.AcceptedApplication())

	g.Applications[1].Status = ApplicationStatusAccepted
	accepted := g.AcceptedApplication()
	assert.NotNil(t, accepted)
	assert.Equal(t, ApplicationStatusAccepted, accepted.Status)
}
