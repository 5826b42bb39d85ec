// Package mcp serves battery lookups over a line-delimited JSON-RPC 2.0
// stdio protocol using the Model Context Protocol tool conventions, so host
// integrations can query the battery cache without linking against it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/sirupsen/logrus"
)

// DeviceReader is the query surface of the battery cache.
type DeviceReader interface {
	DeviceList(ctx context.Context) []battery.DeviceInfo
	Stats(name string) (battery.BatteryStats, bool)
}

// methodFunc answers one JSON-RPC method. A non-nil *rpcError becomes the
// response's error member.
type methodFunc func(ctx context.Context, params json.RawMessage) (any, *rpcError)

// Server answers MCP requests from a DeviceReader.
type Server struct {
	devices DeviceReader
	version string
	log     logrus.FieldLogger
	tools   []tool
	methods map[string]methodFunc
}

// NewServer constructs a Server answering from devices. version is reported
// in the initialize handshake.
func NewServer(devices DeviceReader, version string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		devices: devices,
		version: version,
		log:     log,
	}
	s.tools = s.batteryTools()
	s.methods = map[string]methodFunc{
		"initialize": s.initialize,
		"ping":       func(context.Context, json.RawMessage) (any, *rpcError) { return struct{}{}, nil },
		"tools/list": s.listTools,
		"tools/call": s.callTool,
	}
	return s
}

// Run answers requests read line by line from r, writing one response line
// per request to w. Notifications get no response. It returns nil at EOF or
// when ctx is cancelled, and the error of a failed read or write otherwise.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go readLines(ctx, r, lines, readErr)

	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			resp := s.dispatch(ctx, line)
			if resp == nil {
				continue
			}
			if err := enc.Encode(resp); err != nil {
				return err
			}
		}
	}
}

// dispatch decodes one request and routes it. It returns nil for
// notifications.
func (s *Server) dispatch(ctx context.Context, line []byte) *response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.WithError(err).Debug("malformed json-rpc request")
		return &response{JSONRPC: jsonrpcVersion, Error: &rpcError{Code: codeParseError, Message: "Parse error"}}
	}
	if req.ID == nil {
		s.log.WithField("method", req.Method).Debug("notification")
		return nil
	}

	resp := &response{JSONRPC: jsonrpcVersion, ID: req.ID}
	method, ok := s.methods[req.Method]
	if !ok {
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: "Method not found"}
		return resp
	}
	resp.Result, resp.Error = method(ctx, req.Params)
	return resp
}

func (s *Server) initialize(context.Context, json.RawMessage) (any, *rpcError) {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo":      map[string]any{"name": "ghubbattery", "version": s.version},
	}, nil
}

func (s *Server) listTools(context.Context, json.RawMessage) (any, *rpcError) {
	return map[string]any{"tools": s.tools}, nil
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments,omitempty"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params"}
	}

	t, ok := s.lookupTool(call.Name)
	if !ok {
		return textResult(fmt.Sprintf("unknown tool: %s", call.Name), true), nil
	}

	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	s.log.WithField("tool", call.Name).Debug("tool call")
	result, err := t.handler(ctx, args)
	if err != nil {
		return textResult(err.Error(), true), nil
	}
	text, err := json.Marshal(result)
	if err != nil {
		return textResult(err.Error(), true), nil
	}
	return textResult(string(text), false), nil
}

func (s *Server) lookupTool(name string) (tool, bool) {
	for _, t := range s.tools {
		if t.Name == name {
			return t, true
		}
	}
	return tool{}, false
}
