package tele

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/internal/types"
	tele_api "github.com/temoto/kiosk/tele"
)

func (self *tele) Verify(ctx context.Context, pin, biometric string) (types.Verdict, error) {
	if !self.config.Enabled {
		return types.VerdictInvalid, types.VerificationError{Err: tele_api.ErrDisabled}
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultVerifyTimeout)
		defer cancel()
	}

	replych := make(chan tele_api.VerifyResponse, 1)
	self.verifyMu.Lock()
	self.verifyLast++
	id := self.verifyLast
	self.verifyPending[id] = replych
	self.verifyMu.Unlock()
	defer func() {
		self.verifyMu.Lock()
		delete(self.verifyPending, id)
		self.verifyMu.Unlock()
	}()

	payload, err := json.Marshal(tele_api.VerifyRequest{Id: id, Pin: pin, Biometric: biometric})
	if err != nil {
		return types.VerdictInvalid, errors.Annotate(err, "verify request")
	}
	if !self.transport.SendVerify(ctx, payload) {
		self.StatModify(func(s *tele_api.Stat) { s.VerifyOffline++ })
		return types.VerdictInvalid, errors.Trace(types.VerificationError{Err: errors.New("send failed")})
	}

	select {
	case r := <-replych:
		if r.Error != "" {
			self.StatModify(func(s *tele_api.Stat) { s.VerifyOffline++ })
			return types.VerdictInvalid, errors.Trace(types.VerificationError{Err: errors.New(r.Error)})
		}
		if r.Approved {
			self.StatModify(func(s *tele_api.Stat) { s.VerifyApproved++ })
			return types.VerdictApproved, nil
		}
		self.StatModify(func(s *tele_api.Stat) { s.VerifyDenied++ })
		return types.VerdictDenied, nil

	case <-ctx.Done():
		self.StatModify(func(s *tele_api.Stat) { s.VerifyOffline++ })
		return types.VerdictInvalid, errors.Trace(types.VerificationError{Err: tele_api.ErrTimeout})
	}
}

func (self *tele) onVerifyReply(payload []byte) {
	var r tele_api.VerifyResponse
	if err := json.Unmarshal(payload, &r); err != nil {
		self.log.Errorf("tele verify reply payload=%q err=%v", payload, err)
		return
	}
	self.verifyMu.Lock()
	replych, ok := self.verifyPending[r.Id]
	delete(self.verifyPending, r.Id)
	self.verifyMu.Unlock()
	if !ok {
		self.log.Debugf("tele verify reply id=%d not pending", r.Id)
		return
	}
	replych <- r
}
