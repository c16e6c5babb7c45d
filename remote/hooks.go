package remote

import (
	"context"
	"time"
)

// CallHook observes client calls. Implementations must be safe for concurrent use.
// A panic in either method is recovered and logged; it never fails the call.
type CallHook interface {
	// OnCallStart runs before the request is built. The returned context is used for
	// the rest of the call.
	OnCallStart(ctx context.Context, info CallInfo) (context.Context, HookToken)
	// OnCallEnd runs once the call has finished, with the call's error or nil.
	OnCallEnd(ctx context.Context, token HookToken, info CallInfo, stats *CallStats, err error)
}

// HookToken is an opaque value passed from OnCallStart to OnCallEnd.
type HookToken any

// CallInfo describes one call.
type CallInfo struct {
	Endpoint    string
	InputNames  []string
	OutputNames []string
	Inputs      int
	HasConfig   bool
}

// CallStats holds the measured sizes and duration of one call. Fields for stages the
// call did not reach stay zero.
type CallStats struct {
	RequestBytes   int64
	ResponseBytes  int64
	InputElements  int64
	OutputElements int64
	Outputs        int
	Duration       time.Duration
}

func (s *CallStats) recordInputs(n int) {
	s.InputElements += int64(n)
}

func (s *CallStats) recordOutput(n int) {
	s.Outputs++
	s.OutputElements += int64(n)
}
