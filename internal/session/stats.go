package session

import "sync/atomic"

// Stats are cumulative, safe-for-concurrent-read counters describing a
// session's lifetime activity. A TUI or HTTP status endpoint can poll these
// at any time without coordinating with the Spin goroutine.
type Stats struct {
	decoded   atomic.Uint64
	seqJumps  atomic.Uint64
	resyncs   atomic.Uint64
	malformed atomic.Uint64
}

// Decoded is the count of status/query records successfully dispatched.
func (s *Stats) Decoded() uint64 { return s.decoded.Load() }

// SeqJumps is the count of rolling packet-ID discontinuities observed.
func (s *Stats) SeqJumps() uint64 { return s.seqJumps.Load() }

// Resyncs is the count of failed decodes (sequence jumps included) that
// dropped the session back to StateSyncing.
func (s *Stats) Resyncs() uint64 { return s.resyncs.Load() }

// Malformed is the count of decodes that failed with KindMalformed (a
// structural parse failure); out-of-range fields and sequence jumps are not
// counted here.
func (s *Stats) Malformed() uint64 { return s.malformed.Load() }
