package tele

import (
	"sync"
)

// Low priority telemetry buffer. Can be updated at any time.
// Sent together with more important data.
type Stat struct { //nolint:maligned
	sync.Mutex
	Telemetry_Stat
}

// Internal for tele package. Caller must hold self.Mutex.
func (self *Stat) Locked_Reset() {
	self.Telemetry_Stat = Telemetry_Stat{}
}
