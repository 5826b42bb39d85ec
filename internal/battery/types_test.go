package battery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshot_RepeatedNameKeepsPosition(t *testing.T) {
	snap := NewSnapshot(time.Time{},
		Entry{Name: "a", Stats: BatteryStats{Percentage: 1}},
		Entry{Name: "b", Stats: BatteryStats{Percentage: 2}},
		Entry{Name: "a", Stats: BatteryStats{Percentage: 3}},
	)

	assert.Equal(t, []string{"a", "b"}, snap.Names())
	st, _ := snap.Get("a")
	assert.Equal(t, 3.0, st.Percentage)
	assert.Equal(t, []Entry{
		{Name: "a", Stats: BatteryStats{Percentage: 3}},
		{Name: "b", Stats: BatteryStats{Percentage: 2}},
	}, snap.Entries())
}

func TestSnapshot_NamesIsACopy(t *testing.T) {
	snap := NewSnapshot(time.Time{}, Entry{Name: "a"})
	names := snap.Names()
	names[0] = "changed"

	assert.Equal(t, []string{"a"}, snap.Names())
}

func TestSnapshot_Nil(t *testing.T) {
	var snap *Snapshot

	assert.Equal(t, 0, snap.Len())
	assert.Nil(t, snap.Names())
	assert.Nil(t, snap.Entries())
	assert.Empty(t, snap.Devices())
	_, ok := snap.Get("x")
	assert.False(t, ok)
}
