package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
)

const (
	jsonrpcVersion  = "2.0"
	protocolVersion = "2024-11-05"

	// maxMessageSize bounds a single request line.
	maxMessageSize = 1 << 20
)

// JSON-RPC 2.0 error codes used by the server.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type response struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Result  any              `json:"result,omitempty"`
	Error   *rpcError        `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// content is one item of a tool result. Only text items are produced.
type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResult is the result of tools/call. Tool failures are reported here
// with IsError set, not as JSON-RPC errors.
type toolResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError"`
}

func textResult(text string, isError bool) toolResult {
	return toolResult{Content: []content{{Type: "text", Text: text}}, IsError: isError}
}

// readLines sends every non-blank line of r on out, then reports the
// scanner's error (nil at EOF or on cancellation) on errc and closes out.
func readLines(ctx context.Context, r io.Reader, out chan<- []byte, errc chan<- error) {
	defer close(out)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		select {
		case out <- append([]byte(nil), line...):
		case <-ctx.Done():
			errc <- nil
			return
		}
	}
	errc <- sc.Err()
}
