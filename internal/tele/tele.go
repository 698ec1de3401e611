package tele

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/helpers"
	"github.com/temoto/kiosk/log2"
	tele_api "github.com/temoto/kiosk/tele"
	tele_config "github.com/temoto/kiosk/tele/config"
	"github.com/temoto/spq"
)

const (
	DefaultNetworkTimeout = 30 * time.Second
	DefaultVerifyTimeout  = 10 * time.Second
)

// Tele contract:
// - Init() fails only with invalid config, network issues ignored
// - Transaction/Error/State public API calls block at most for disk write
//   network may be slow or absent, messages will be delivered in background
// - Telemetry delivered at least once, State messages may be lost
// - Verify is synchronous request/reply, bounded by ctx deadline
type tele struct { //nolint:maligned
	config       tele_config.Config
	log          *log2.Log
	transport    Transporter
	q            *spq.Queue
	stopCh       chan struct{}
	retry        helpers.Backoff
	stat         tele_api.Stat
	currentState tele_api.State

	verifyMu      sync.Mutex
	verifyLast    uint32
	verifyPending map[uint32]chan<- tele_api.VerifyResponse
}

func New() tele_api.Teler {
	return &tele{}
}
func NewWithTransporter(trans Transporter) tele_api.Teler {
	return &tele{transport: trans}
}

func (self *tele) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config) error {
	self.config = teleConfig
	self.log = log
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	if !self.config.Enabled {
		return nil
	}
	if self.config.ClientId == "" {
		return errors.NotValidf("tele client_id=empty")
	}

	self.stopCh = make(chan struct{})
	self.verifyPending = make(map[uint32]chan<- tele_api.VerifyResponse)
	self.retry = helpers.Backoff{Min: 100 * time.Millisecond, Max: 30 * time.Second, K: 2}
	self.stat.Locked_Reset()

	// test code sets .transport
	if self.transport == nil { // production path
		self.transport = &transportMqtt{}
	}
	if err := self.transport.Init(ctx, log, teleConfig, self.onVerifyReply); err != nil {
		return errors.Annotate(err, "tele transport")
	}

	if self.config.PersistPath == "" {
		panic("code error must set self.config.PersistPath")
	}
	var err error
	self.q, err = spq.Open(self.config.PersistPath)
	if err != nil {
		return errors.Annotate(err, "tele queue")
	}

	go self.qworker()
	self.State(tele_api.State_Boot)

	return nil
}

func (self *tele) Close() {
	if !self.config.Enabled {
		return
	}
	close(self.stopCh)
	if self.q != nil {
		self.q.Close()
	}
	self.transport.CloseTele()
}

// denote value type in persistent queue bytes form
const (
	qTelemetry byte = 2
)

func (self *tele) qworker() {
	for {
		box, err := self.q.Peek()
		switch err {
		case nil:
			// success path
			b := box.Bytes()
			var del bool
			del, err = self.qhandle(b)
			if err != nil {
				self.log.Errorf("tele qhandle b=%x err=%v", b, err)
			}
			if del {
				if err = self.q.Delete(box); err != nil {
					self.log.Errorf("tele qhandle Delete b=%x err=%v", b, err)
				}
			} else {
				if err = self.q.DeletePush(box); err != nil {
					self.log.Errorf("tele qhandle DeletePush b=%x err=%v", b, err)
				}
			}
			if delay := self.retry.Next(del); delay != 0 {
				select {
				case <-time.After(delay):
				case <-self.stopCh:
					return
				}
			}

		case spq.ErrClosed:
			select {
			case <-self.stopCh: // success path
			default:
				self.log.Errorf("CRITICAL tele spq closed unexpectedly")
			}
			return

		default:
			self.log.Errorf("CRITICAL tele spq err=%v", err)
			select {
			case <-time.After(self.retry.Next(false)):
			case <-self.stopCh:
				return
			}
		}
	}
}

func (self *tele) qhandle(b []byte) (bool, error) {
	if len(b) == 0 {
		self.log.Errorf("tele spq peek=empty")
		// what else can we do?
		return true, nil
	}

	switch b[0] {
	case qTelemetry:
		// payload is already JSON, tag byte is only for queue
		return self.transport.SendTelemetry(b[1:]), nil

	default:
		err := errors.Errorf("unknown kind=%d", b[0])
		return true, err
	}
}

func (self *tele) qpushTelemetry(tm *tele_api.Telemetry) error {
	if tm.ClientId == "" {
		tm.ClientId = self.config.ClientId
	}
	if tm.Time == 0 {
		tm.Time = time.Now().UnixNano()
	}
	if tm.BuildVersion == "" {
		tm.BuildVersion = self.config.BuildVersion
	}
	self.stat.Lock()
	defer self.stat.Unlock()
	stat := self.stat.Telemetry_Stat
	tm.Stat = &stat
	err := self.qpushTagJSON(qTelemetry, tm)
	self.stat.Locked_Reset()
	return err
}

func (self *tele) qpushTagJSON(tag byte, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Annotate(err, "json")
	}
	buf := make([]byte, 0, len(b)+1)
	buf = append(buf, tag)
	buf = append(buf, b...)
	return self.q.Push(buf)
}
