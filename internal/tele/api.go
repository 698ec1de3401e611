package tele

import (
	"github.com/juju/errors"
	tele_api "github.com/temoto/kiosk/tele"
)

const logMsgDisabled = "tele disabled"

func (self *tele) Error(e error) {
	if !self.config.Enabled {
		self.log.Debugf(logMsgDisabled)
		return
	}

	self.log.Debugf("tele.Error: " + errors.ErrorStack(e))
	tm := &tele_api.Telemetry{
		Error: &tele_api.Telemetry_Error{Message: e.Error()},
	}
	if err := self.qpushTelemetry(tm); err != nil {
		self.log.Errorf("CRITICAL qpushTelemetry telemetry_error=%#v err=%v", tm.Error, err)
	}
}

func (self *tele) State(s tele_api.State) {
	if !self.config.Enabled {
		return
	}
	if self.currentState != s {
		self.currentState = s
		self.transport.SendState([]byte{byte(s)})
	}
}

func (self *tele) StatModify(fun func(s *tele_api.Stat)) {
	if !self.config.Enabled {
		return
	}

	self.stat.Lock()
	fun(&self.stat)
	self.stat.Unlock()
}

func (self *tele) Transaction(tx tele_api.Transaction) {
	if !self.config.Enabled {
		self.log.Debugf(logMsgDisabled)
		return
	}
	self.StatModify(func(s *tele_api.Stat) { s.Transactions++ })
	err := self.qpushTelemetry(&tele_api.Telemetry{Transaction: &tx})
	if err != nil {
		self.log.Errorf("CRITICAL transaction=%#v err=%v", tx, err)
	}
}
