package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevices is a DeviceReader over a fixed snapshot.
type fakeDevices struct {
	snap      *battery.Snapshot
	listCalls int
}

func (f *fakeDevices) DeviceList(context.Context) []battery.DeviceInfo {
	f.listCalls++
	return f.snap.Devices()
}

func (f *fakeDevices) Stats(name string) (battery.BatteryStats, bool) {
	return f.snap.Get(name)
}

func newTestServer() (*Server, *fakeDevices) {
	devices := &fakeDevices{snap: battery.NewSnapshot(time.Now(),
		battery.Entry{Name: "G502 X", Stats: battery.BatteryStats{IsConnected: true, Millivolts: 4000, Percentage: 87.5}},
		battery.Entry{Name: "G915", Stats: battery.BatteryStats{IsCharging: true, IsConnected: true, Millivolts: 3700, Percentage: 41}},
	)}
	log, _ := test.NewNullLogger()
	return NewServer(devices, "1.2.3", log), devices
}

// exchange feeds lines to s and returns every response line it wrote.
func exchange(t *testing.T, s *Server, lines ...string) []string {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer

	require.NoError(t, s.Run(context.Background(), in, &out))

	var responses []string
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		responses = append(responses, sc.Text())
	}
	return responses
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, line string) rpcResponse {
	t.Helper()
	var r rpcResponse
	require.NoError(t, json.Unmarshal([]byte(line), &r), "response: %s", line)
	return r
}

// toolText extracts the text content and error flag from a tools/call result.
func toolText(t *testing.T, r rpcResponse) (string, bool) {
	t.Helper()
	var res toolResult
	require.NoError(t, json.Unmarshal(r.Result, &res))
	require.Len(t, res.Content, 1)
	return res.Content[0].Text, res.IsError
}

func TestRun_Initialize(t *testing.T) {
	s, _ := newTestServer()
	resp := exchange(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	require.Len(t, resp, 1)

	var parsed struct {
		Result struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp[0]), &parsed))
	assert.NotEmpty(t, parsed.Result.ProtocolVersion)
	assert.Equal(t, "ghubbattery", parsed.Result.ServerInfo.Name)
	assert.Equal(t, "1.2.3", parsed.Result.ServerInfo.Version)
}

func TestRun_ToolsList(t *testing.T) {
	s, _ := newTestServer()
	resp := exchange(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Len(t, resp, 1)

	var parsed struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp[0]), &parsed))

	var names []string
	for _, tool := range parsed.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"get_all_devices", "get_battery_stats"}, names)
}

func TestRun_ErrorsAndNotifications(t *testing.T) {
	s, _ := newTestServer()
	resp := exchange(t, s,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":3,"method":"nonexistent/method"}`,
		`this is not json`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":"bad"}`,
		`{"jsonrpc":"2.0","id":5,"method":"ping"}`,
	)
	// The notification produces no response.
	require.Len(t, resp, 4)

	r := decode(t, resp[0])
	require.NotNil(t, r.Error)
	assert.Equal(t, -32601, r.Error.Code)

	r = decode(t, resp[1])
	require.NotNil(t, r.Error)
	assert.Equal(t, -32700, r.Error.Code)

	r = decode(t, resp[2])
	require.NotNil(t, r.Error)
	assert.Equal(t, -32602, r.Error.Code)

	r = decode(t, resp[3])
	assert.Nil(t, r.Error)
	assert.JSONEq(t, `{}`, string(r.Result))
}

func TestRun_UnknownTool(t *testing.T) {
	s, _ := newTestServer()
	resp := exchange(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`)
	require.Len(t, resp, 1)

	text, isErr := toolText(t, decode(t, resp[0]))
	assert.True(t, isErr)
	assert.Equal(t, "unknown tool: nope", text)
}

func TestRun_ContextCancel(t *testing.T) {
	s, _ := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())

	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, pr, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestRun_SkipsBlankLines(t *testing.T) {
	s, _ := newTestServer()
	resp := exchange(t, s,
		``,
		`   `,
		`{"jsonrpc":"2.0","id":7,"method":"ping"}`,
	)
	require.Len(t, resp, 1)
	assert.Equal(t, "7", string(decode(t, resp[0]).ID))
}

func TestRun_ToolsListShape(t *testing.T) {
	s, _ := newTestServer()
	resp := exchange(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Len(t, resp, 1)

	var parsed struct {
		Result struct {
			Tools []map[string]json.RawMessage `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp[0]), &parsed))
	require.Len(t, parsed.Result.Tools, 2)
	for _, tool := range parsed.Result.Tools {
		assert.Len(t, tool, 3)
		assert.Contains(t, tool, "inputSchema")
	}
}
