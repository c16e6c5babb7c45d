// Package graphpipefb holds the flatbuffers tables of the GraphPipe wire schema in
// graphpipe.fbs.
package graphpipefb
