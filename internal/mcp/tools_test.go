package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllDevices(t *testing.T) {
	s, devices := newTestServer()
	resp := exchange(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_all_devices"}}`)
	require.Len(t, resp, 1)

	text, isErr := toolText(t, decode(t, resp[0]))
	require.False(t, isErr, text)

	var result DevicesResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, []string{"G502 X", "G915"}, result.Devices)
	assert.Equal(t, 1, devices.listCalls)
}

func TestGetBatteryStats(t *testing.T) {
	s, devices := newTestServer()
	resp := exchange(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_battery_stats","arguments":{"device":"G502 X"}}}`,
	)
	require.Len(t, resp, 1)

	text, isErr := toolText(t, decode(t, resp[0]))
	require.False(t, isErr, text)

	var result BatteryStatsResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, BatteryStatsResult{
		Device:      "G502 X",
		Percentage:  87.5,
		Millivolts:  4000,
		IsConnected: true,
	}, result)
	assert.Equal(t, 0, devices.listCalls, "stats lookups must not enumerate or refresh")
}

func TestGetBatteryStats_Errors(t *testing.T) {
	tests := []struct {
		name string
		args string
		want string
	}{
		{"unknown device", `{"device":"unknown-device"}`, "device not found: unknown-device"},
		{"missing device", `{}`, "device is required"},
		{"blank device", `{"device":"  "}`, "device is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestServer()
			line := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_battery_stats","arguments":` + tc.args + `}}`
			resp := exchange(t, s, line)
			require.Len(t, resp, 1)

			text, isErr := toolText(t, decode(t, resp[0]))
			assert.True(t, isErr)
			assert.Equal(t, tc.want, text)
		})
	}
}
