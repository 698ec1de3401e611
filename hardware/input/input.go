// Abstract input events
package input

import (
	"fmt"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/kiosk/internal/types"
	"github.com/temoto/kiosk/log2"
)

func Drain(ch <-chan types.InputEvent) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

type Source interface {
	Read() (types.InputEvent, error)
	String() string
}

type EventFunc func(types.InputEvent)
type sub struct {
	name string
	ch   chan<- types.InputEvent
	fun  EventFunc
	stop <-chan struct{}
}

// Dispatch fans out events from sources to named subscribers.
// Subscriber channels are never closed, consumer must select on its own stop channel.
type Dispatch struct {
	Log  *log2.Log
	bus  chan types.InputEvent
	mu   sync.Mutex
	subs map[string]*sub
	stop <-chan struct{}
}

func NewDispatch(log *log2.Log, stop <-chan struct{}) *Dispatch {
	return &Dispatch{
		Log:  log,
		bus:  make(chan types.InputEvent),
		subs: make(map[string]*sub, 16),
		stop: stop,
	}
}

func (self *Dispatch) SubscribeChan(name string, substop <-chan struct{}) chan types.InputEvent {
	target := make(chan types.InputEvent)
	sub := &sub{
		name: name,
		ch:   target,
		stop: substop,
	}
	self.safeSubscribe(sub)
	return target
}

func (self *Dispatch) SubscribeFunc(name string, fun EventFunc, substop <-chan struct{}) {
	sub := &sub{
		name: name,
		fun:  fun,
		stop: substop,
	}
	self.safeSubscribe(sub)
}

func (self *Dispatch) Unsubscribe(name string) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if _, ok := self.subs[name]; !ok {
		panic("code error input sub not found name=" + name)
	}
	delete(self.subs, name)
}

func (self *Dispatch) Subscribed(name string) bool {
	self.mu.Lock()
	_, ok := self.subs[name]
	self.mu.Unlock()
	return ok
}

func (self *Dispatch) Run(sources []Source) {
	for _, source := range sources {
		go self.readSource(source)
	}

	for {
		select {
		case event := <-self.bus:
			self.mu.Lock()
			subs := make([]*sub, 0, len(self.subs))
			for _, sub := range self.subs {
				subs = append(subs, sub)
			}
			self.mu.Unlock()

			handled := false
			for _, sub := range subs {
				if self.subFire(sub, event) {
					handled = true
				}
			}
			if !handled {
				self.Log.Debugf("input is not handled event=%#v", event)
			}

		case <-self.stop:
			Drain(self.bus)
			return
		}
	}
}

func (self *Dispatch) Emit(event types.InputEvent) {
	select {
	case self.bus <- event:
		self.Log.Debugf("input emit=%#v", event)
	case <-self.stop:
		return
	}
}

func (self *Dispatch) subFire(sub *sub, event types.InputEvent) bool {
	select {
	case <-sub.stop:
		self.subRemove(sub)
		return false
	default:
	}

	if sub.ch == nil && sub.fun == nil {
		panic(fmt.Sprintf("input sub=%s ch=nil fun=nil", sub.name))
	}
	if sub.fun != nil {
		sub.fun(event)
	}
	if sub.ch != nil {
		select {
		case sub.ch <- event:
		case <-sub.stop:
			self.subRemove(sub)
			return false
		case <-self.stop:
			return false
		}
	}
	return true
}

// subRemove deletes sub only if it was not replaced by new subscription with same name.
func (self *Dispatch) subRemove(s *sub) {
	self.mu.Lock()
	if self.subs[s.name] == s {
		delete(self.subs, s.name)
	}
	self.mu.Unlock()
}

func (self *Dispatch) safeSubscribe(s *sub) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if existing, ok := self.subs[s.name]; ok {
		select {
		case <-s.stop:
			panic("code error input subscribe already closed name=" + s.name)
		case <-existing.stop:
		default:
			panic("code error input duplicate subscribe name=" + s.name)
		}
	}
	self.subs[s.name] = s
}

func (self *Dispatch) readSource(source Source) {
	tag := source.String()
	for {
		event, err := source.Read()
		if err == io.EOF {
			self.Log.Infof("input source=%s closed", tag)
			return
		}
		if err != nil {
			err = errors.Annotatef(err, "input source=%s", tag)
			self.Log.Fatal(errors.ErrorStack(err))
			return
		}
		self.Emit(event)
	}
}
