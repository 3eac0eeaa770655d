// Package command is scanledger's administrative command surface.
//
// Every privileged operation flows through the Dispatcher, which runs
// the rate limiter and the schema gate before any storage access and
// translates every outcome into a structured Result. No error crosses
// the dispatcher boundary as a raised fault: callers always receive a
// success payload or an error string.
//
// The external collaborators stay behind interfaces: the scanning
// engine is a Producer of result and progress events, and the
// spreadsheet renderer is an Exporter fed by the store's result stream.
// The Recorder bridges a Producer to the store with batched,
// transactional inserts.
package command
