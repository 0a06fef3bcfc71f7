package modal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStack(t *testing.T) {
	var s Stack

	_, ok := s.Top()
	require.False(t, ok)
	_, ok = s.Pop()
	require.False(t, ok)

	ref := &BookingRef{CourseID: 1, Date: "2025-04-12", Time: "09:00"}
	s.Push(Intent{Kind: KindBooking, ReturnTo: "/course/1", Booking: ref})
	s.Push(Intent{Kind: KindAuth, ReturnTo: "/booking?course=1", Booking: ref})
	require.Equal(t, 2, s.Len())
	require.True(t, s.TopIs(KindAuth))

	top, ok := s.Pop()
	require.True(t, ok)
	require.Equal(t, KindAuth, top.Kind)
	require.Equal(t, ref, top.Booking)
	require.True(t, s.TopIs(KindBooking))

	s.Clear()
	require.Zero(t, s.Len())
	require.False(t, s.TopIs(KindBooking))
}

func TestPopTo(t *testing.T) {
	var s Stack
	s.Push(Intent{Kind: KindBooking, ReturnTo: "/course/1"})
	s.Push(Intent{Kind: KindAuth, ReturnTo: "/booking"})

	found, ok := s.PopTo(KindBooking)
	require.True(t, ok)
	require.Equal(t, "/course/1", found.ReturnTo)
	require.Zero(t, s.Len())

	_, ok = s.PopTo(KindAuth)
	require.False(t, ok)
}

func TestFind(t *testing.T) {
	var s Stack
	ref := &BookingRef{CourseID: 2, Date: "2025-04-12", Time: "10:00"}
	s.Push(Intent{Kind: KindBooking, ReturnTo: "/course/2", Booking: ref})
	s.Push(Intent{Kind: KindAuth, ReturnTo: "/booking", Booking: ref})

	found, ok := s.Find(KindBooking)
	require.True(t, ok)
	require.Equal(t, "/course/2", found.ReturnTo)
	require.Equal(t, 2, s.Len())

	s.Clear()
	_, ok = s.Find(KindBooking)
	require.False(t, ok)
}
