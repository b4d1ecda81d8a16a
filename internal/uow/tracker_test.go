package uow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/uow"
)

func TestTracker_MergesStates(t *testing.T) {
	cases := []struct {
		name   string
		states []uow.State
		want   []uow.State
	}{
		{"added then modified stays added", []uow.State{uow.Added, uow.Modified}, []uow.State{uow.Added}},
		{"added then deleted is dropped", []uow.State{uow.Added, uow.Deleted}, nil},
		{"modified then deleted is deleted", []uow.State{uow.Modified, uow.Deleted}, []uow.State{uow.Deleted}},
		{"deleted then modified stays deleted", []uow.State{uow.Deleted, uow.Modified}, []uow.State{uow.Deleted}},
		{"modified twice", []uow.State{uow.Modified, uow.Modified}, []uow.State{uow.Modified}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tr uow.Tracker
			w := newWidget("w")
			for _, s := range tc.states {
				tr.Track(w, s, nil)
			}
			var got []uow.State
			for _, e := range tr.Entries() {
				got = append(got, e.State)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTracker_KeysByPointerAndKeepsOrder(t *testing.T) {
	var tr uow.Tracker
	a, b := newWidget("same"), newWidget("same")
	tr.Track(a, uow.Added, nil)
	tr.Track(b, uow.Modified, nil)
	tr.Track(a, uow.Modified, nil)

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Same(t, a, entries[0].Entity)
	assert.Equal(t, uow.Added, entries[0].State)
	assert.Same(t, b, entries[1].Entity)

	tr.Reset()
	assert.Zero(t, tr.Len())
}
