package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// DevicesResult lists the devices in the current battery snapshot.
type DevicesResult struct {
	Devices []string `json:"devices"`
}

// BatteryStatsResult holds one device's battery state.
type BatteryStatsResult struct {
	Device      string  `json:"device"`
	Percentage  float64 `json:"percentage"`
	Millivolts  int     `json:"millivolts"`
	IsCharging  bool    `json:"is_charging"`
	IsConnected bool    `json:"is_connected"`
}

// batteryStatsArgs are the arguments of get_battery_stats.
type batteryStatsArgs struct {
	Device string `json:"device"`
}

var (
	noArgsSchema = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	deviceSchema = json.RawMessage(`{"type":"object","properties":{"device":{"type":"string","description":"Device name as returned by get_all_devices"}},"required":["device"],"additionalProperties":false}`)
)

// toolHandler runs a tool on its raw JSON arguments.
type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

// tool is one entry of tools/list. The handler is not serialized.
type tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	handler     toolHandler
}

func (s *Server) batteryTools() []tool {
	return []tool{
		{
			Name:        "get_all_devices",
			Description: "Names of all G HUB devices that report a battery.",
			InputSchema: noArgsSchema,
			handler:     s.handleGetAllDevices,
		},
		{
			Name:        "get_battery_stats",
			Description: "Battery percentage, voltage, and charging state for one device.",
			InputSchema: deviceSchema,
			handler:     s.handleGetBatteryStats,
		},
	}
}

// handleGetAllDevices lists the devices, refreshing first if none are known.
func (s *Server) handleGetAllDevices(ctx context.Context, _ json.RawMessage) (any, error) {
	devices := s.devices.DeviceList(ctx)
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	return DevicesResult{Devices: names}, nil
}

// handleGetBatteryStats looks up a single device. It never triggers a refresh.
func (s *Server) handleGetBatteryStats(_ context.Context, args json.RawMessage) (any, error) {
	var a batteryStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.Device) == "" {
		return nil, fmt.Errorf("device is required")
	}

	stats, ok := s.devices.Stats(a.Device)
	if !ok {
		return nil, fmt.Errorf("device not found: %s", a.Device)
	}

	return BatteryStatsResult{
		Device:      a.Device,
		Percentage:  stats.Percentage,
		Millivolts:  stats.Millivolts,
		IsCharging:  stats.IsCharging,
		IsConnected: stats.IsConnected,
	}, nil
}
