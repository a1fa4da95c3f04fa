package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from State
		e    Event
		want Transition
	}{
		{Disconnected, ConnectRequested, Transition{To: Connecting}},
		{Connecting, AccountsGranted, Transition{To: Connected, Refresh: RefreshAll}},
		{Connecting, AccountsDenied, Transition{To: Disconnected, Reset: true}},
		{Connecting, DisconnectRequested, Transition{To: Disconnected, Reset: true}},
		{Connected, DisconnectRequested, Transition{To: Disconnected, Reset: true}},
		{Connected, ConnectRequested, Transition{To: Connected}},
		{Disconnected, DisconnectRequested, Transition{To: Disconnected}},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.e.String(), func(t *testing.T) {
			got, err := Next(tt.from, tt.e)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextInvalid(t *testing.T) {
	invalid := []struct {
		from State
		e    Event
	}{
		{Disconnected, AccountsGranted},
		{Disconnected, AccountsDenied},
		{Connecting, ConnectRequested},
		{Connected, AccountsGranted},
		{Connected, AccountsDenied},
	}
	for _, tt := range invalid {
		got, err := Next(tt.from, tt.e)
		assert.Error(t, err, "%s on %s", tt.e, tt.from)
		assert.Equal(t, tt.from, got.To)
	}
}

func TestRefreshHas(t *testing.T) {
	assert.True(t, RefreshAll.Has(RefreshName))
	assert.True(t, RefreshAll.Has(RefreshOwner|RefreshBalance))
	assert.False(t, RefreshBalance.Has(RefreshName))
	assert.False(t, RefreshNone.Has(RefreshBalance))
	assert.True(t, RefreshName.Has(RefreshNone))
}
