package server

import (
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/vango-dev/streamstore/internal/errors"
	"github.com/vango-dev/streamstore/pkg/stream"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Frame types.
const (
	FrameUpdate = "update"
	FrameAction = "action"
	FramePing   = "ping"
	FramePong   = "pong"
	FrameRender = "render"
	FrameError  = "error"
	FrameHello  = "hello"
)

// Frame is one JSON websocket message in either direction.
type Frame struct {
	Type string `json:"type"`

	// Partial is the state merged by an update frame.
	Partial stream.Record `json:"partial,omitempty"`

	// Name and Args select and parameterize an action.
	Name string        `json:"name,omitempty"`
	Args stream.Record `json:"args,omitempty"`

	// Session is sent in the hello frame.
	Session string `json:"session,omitempty"`

	// HTML is the rendered document body of a render frame.
	HTML string `json:"html,omitempty"`

	// Code and Message describe an error frame.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// DecodeFrame parses a client frame. It returns an E020 error for
// malformed JSON or a missing type.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.New("E020").WithDetail(err.Error())
	}
	if f.Type == "" {
		return nil, errors.New("E020").WithDetail("missing frame type")
	}
	normalize(f.Partial)
	normalize(f.Args)
	return &f, nil
}

// normalize turns whole JSON numbers into ints so Field[int] selectors see
// the values clients send. Only top-level values are converted.
func normalize(r stream.Record) {
	for k, v := range r {
		if n, ok := v.(float64); ok && n == math.Trunc(n) && math.Abs(n) <= 1<<53 {
			r[k] = int(n)
		}
	}
}

// Encode serializes the frame.
func (f *Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// errorFrame converts err into an error frame. Uncoded errors are
// reported as E020.
func errorFrame(err error) *Frame {
	code := errors.CodeOf(err)
	if code == "" {
		code = "E020"
	}
	return &Frame{Type: FrameError, Code: code, Message: err.Error()}
}
