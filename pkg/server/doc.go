// Package server hosts a store-backed application over HTTP and
// websockets.
//
// GET / server-renders the application from the binding's initial state.
// GET /ws opens a live session: each session mounts its own container, so
// every connection owns one store. Clients drive the store with JSON
// frames:
//
//	{"type":"update","partial":{"count":1}}
//	{"type":"action","name":"increment"}
//	{"type":"ping"}
//
// After mount and after every update or action the session flushes its
// tree and replies with {"type":"render","html":"..."}. Malformed or
// unknown frames are answered with {"type":"error","code":"E020",...}.
// A session processes its frames one at a time on its read goroutine.
package server
