package vulkan

import "testing"

func TestNewClampsSlotCount(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{5, MaxFramesInFlight},
	}
	for _, c := range cases {
		if got := New(nil, c.in).SlotCount(); got != c.want {
			t.Errorf("New(nil, %d).SlotCount() = %d, want %d", c.in, got, c.want)
		}
	}
}
