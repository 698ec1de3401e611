package tele

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/kiosk/helpers"
	"github.com/temoto/kiosk/log2"
	tele_config "github.com/temoto/kiosk/tele/config"
)

func TopicConnect(client string) string     { return fmt.Sprintf("%s/c", client) }
func TopicState(client string) string       { return fmt.Sprintf("%s/w/1s", client) }
func TopicTelemetry(client string) string   { return fmt.Sprintf("%s/w/1t", client) }
func TopicVerify(client string) string      { return fmt.Sprintf("%s/w/verify", client) }
func TopicVerifyReply(client string) string { return fmt.Sprintf("%s/r/verify", client) }

type transportMqtt struct {
	log      *log2.Log
	onVerify VerifyCallback
	m        mqtt.Client
	mopt     *mqtt.ClientOptions
	timeout  time.Duration

	topicConnect     string
	topicState       string
	topicTelemetry   string
	topicVerify      string
	topicVerifyReply string
}

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onVerify VerifyCallback) error {
	self.log = log
	mqttLog := log.Clone(log2.LInfo)
	if teleConfig.MqttLogDebug {
		mqttLog.SetLevel(log2.LDebug)
		mqtt.DEBUG = mqttLog
	}
	mqtt.ERROR = mqttLog
	mqtt.CRITICAL = mqttLog
	mqtt.WARN = mqttLog

	if teleConfig.MqttBroker == "" {
		return errors.NotValidf("tele mqtt_broker=empty")
	}
	clientId := teleConfig.ClientId
	credFun := func() (string, string) {
		return clientId, teleConfig.MqttPassword
	}

	self.onVerify = onVerify
	self.topicConnect = TopicConnect(clientId)
	self.topicState = TopicState(clientId)
	self.topicTelemetry = TopicTelemetry(clientId)
	self.topicVerify = TopicVerify(clientId)
	self.topicVerifyReply = TopicVerifyReply(clientId)
	keepAlive := helpers.IntSecondDefault(teleConfig.KeepaliveSec, 60*time.Second)
	pingTimeout := helpers.IntSecondDefault(teleConfig.PingTimeoutSec, 30*time.Second)
	self.timeout = helpers.IntSecondDefault(teleConfig.NetworkTimeoutSec, DefaultNetworkTimeout)
	opt := mqtt.NewClientOptions().
		AddBroker(teleConfig.MqttBroker).
		SetBinaryWill(self.topicConnect, []byte{0x00}, 1, true).
		SetCleanSession(false).
		SetClientID(clientId).
		SetCredentialsProvider(credFun).
		SetDefaultPublishHandler(self.messageHandler).
		SetKeepAlive(keepAlive).
		SetPingTimeout(pingTimeout).
		SetOrderMatters(false).
		SetResumeSubs(true).
		SetConnectRetryInterval(self.timeout / 2).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler).
		SetConnectRetry(true)
	if teleConfig.StorePath != "" {
		opt.SetStore(mqtt.NewFileStore(teleConfig.StorePath))
	}
	self.mopt = opt
	self.m = mqtt.NewClient(self.mopt)
	if token := self.m.Connect(); token.Error() != nil {
		self.log.Errorf("tele mqtt connect err=%v", token.Error())
	}
	return nil
}

func (self *transportMqtt) CloseTele() {
	self.log.Infof("mqtt unsubscribe")
	if token := self.m.Unsubscribe(self.topicVerifyReply); token.WaitTimeout(self.timeout) && token.Error() != nil {
		self.log.Infof("mqtt unsubscribe error=%v", token.Error())
	}
	self.m.Disconnect(uint(self.timeout / time.Millisecond))
}

func (self *transportMqtt) SendState(payload []byte) bool {
	self.log.Debugf("transport sendstate payload=%x", payload)
	return self.publish(self.topicState, true, payload, self.timeout)
}

func (self *transportMqtt) SendTelemetry(payload []byte) bool {
	return self.publish(self.topicTelemetry, false, payload, self.timeout)
}

func (self *transportMqtt) SendVerify(ctx context.Context, payload []byte) bool {
	timeout := ctxTimeout(ctx, self.timeout, time.Now())
	if timeout <= 0 {
		return false
	}
	return self.publish(self.topicVerify, false, payload, timeout)
}

func (self *transportMqtt) publish(topic string, retain bool, payload []byte, timeout time.Duration) bool {
	if !self.m.IsConnectionOpen() {
		return false
	}
	token := self.m.Publish(topic, 1, retain, payload)
	if !token.WaitTimeout(timeout) {
		self.log.Errorf("tele mqtt publish topic=%s timeout", topic)
		return false
	}
	if err := token.Error(); err != nil {
		self.log.Errorf("tele mqtt publish topic=%s err=%v", topic, err)
		return false
	}
	return true
}

func (self *transportMqtt) messageHandler(c mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	if msg.Topic() != self.topicVerifyReply {
		self.log.Errorf("tele mqtt message in unexpected topic=%s payload=%x", msg.Topic(), payload)
		return
	}
	self.log.Debugf("mqtt verify reply (%s)", payload)
	self.onVerify(payload)
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("mqtt disconnect err=%v", err)
}

func (self *transportMqtt) onConnectHandler(c mqtt.Client) {
	self.log.Infof("mqtt connect")
	if token := c.Subscribe(self.topicVerifyReply, 1, nil); token.Wait() && token.Error() != nil {
		self.log.Errorf("mqtt subscribe err=%v", token.Error())
	} else {
		c.Publish(self.topicConnect, 1, true, []byte{0x01})
	}
}

// ctxTimeout returns time left until ctx deadline, capped by def.
func ctxTimeout(ctx context.Context, def time.Duration, now time.Time) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := deadline.Sub(now); left < def {
			return left
		}
	}
	return def
}
