// Package statsview serves live charts of the emulator's Go runtime
// (heap, goroutines, GC pauses) while a program runs.
//
// The server is only compiled in with the statsview build tag:
//
//	go build -tags statsview ./cmd/ls8
//
// Without the tag, Available reports false and Launch does nothing.
package statsview

// Address the statistics server listens on.
const Address = "localhost:12800"
