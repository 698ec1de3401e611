package tele

import (
	"context"

	"github.com/temoto/kiosk/log2"
	tele_config "github.com/temoto/kiosk/tele/config"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - Send* deliver within timeout or fail; false means retry later
// - hide "connection" concept from upstream API or errors
// - application may start without network available
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onVerify VerifyCallback) error
	CloseTele()
	SendState(payload []byte) bool
	SendTelemetry(payload []byte) bool
	// SendVerify gives up at ctx deadline when it is earlier than network timeout.
	SendVerify(ctx context.Context, payload []byte) bool
}

type VerifyCallback func(payload []byte)
