// Package pool provides sync.Pool backed buffers for the message builder and the HTTP
// transport: flatbuffers builders, growable body buffers and scratch slices.
package pool
