// Package telemetry publishes actuation events and the bridge description
// to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/atx.go/pkg/actuator"
	fx "github.com/robotalks/atx.go/pkg/framework"
	"github.com/robotalks/atx.go/pkg/msgs"
	"github.com/robotalks/atx.go/pkg/transport/mqtt"
)

// Publisher sends a payload to a topic relative to the bridge.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retain bool) error
}

// Telemetry turns actuator reports into events on the loop, and publishes
// them from a post-processing controller, away from core 1.
type Telemetry struct {
	Meta      msgs.DeviceMeta
	Publisher Publisher

	queue    *mqtt.Queue
	metaJSON []byte
	loop     fx.LoopControl
}

// New creates a Telemetry connected to the broker at brokerURL.
func New(brokerURL string, meta msgs.DeviceMeta) (*Telemetry, error) {
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+mqtt.MetaTopic(meta.ID), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("atx:" + meta.ID)
	}
	t := NewWithPublisher(nil, meta)
	t.queue = mqtt.NewQueue(opts, topicPrefix)
	t.queue.OnConnect = func(*mqtt.Queue) { t.publishMeta(t.metaJSON) }
	t.Publisher = t.queue
	return t, nil
}

// NewWithPublisher creates a Telemetry on an existing Publisher.
func NewWithPublisher(pub Publisher, meta msgs.DeviceMeta) *Telemetry {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		panic(err)
	}
	return &Telemetry{Meta: meta, Publisher: pub, metaJSON: metaJSON}
}

// Event converts an actuator report.
func Event(r actuator.Report) *msgs.Actuation {
	ev := &msgs.Actuation{
		Code:        uint32(r.Code),
		Tag:         r.Code.String(),
		Recognized:  r.Recognized,
		StartedAtNs: r.Started.UnixNano(),
		ElapsedUs:   int64(r.Finished.Sub(r.Started) / time.Microsecond),
	}
	if r.Recognized {
		ev.Target = uint32(r.Action.Target)
		ev.Action = r.Action.Kind.String()
		ev.Pin = int32(r.Action.Line)
		ev.DurationMs = uint32(r.Action.Duration / time.Millisecond)
	}
	return ev
}

// CommandProcessed implements actuator.Observer. It only queues the event.
func (t *Telemetry) CommandProcessed(r actuator.Report) {
	if t.loop == nil {
		return
	}
	t.loop.PostMessage(Event(r))
	t.loop.TriggerNext()
}

// AddToLoop implements LoopAdder.
func (t *Telemetry) AddToLoop(loop *fx.Loop) {
	t.loop = loop
	loop.AddController(fx.PrLvPostProc, t)
	if t.queue != nil {
		loop.AddRunnable(fx.NamedRun("telemetry", t))
	}
}

// Control implements Controller.
func (t *Telemetry) Control(cc fx.ControlContext) error {
	var events []*msgs.Actuation
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if ev, ok := mctx.CurrentMessage().(*msgs.Actuation); ok {
			events = append(events, ev)
			mctx.MessageTaken()
		}
	}))
	for _, ev := range events {
		payload, err := ev.Encode()
		if err != nil {
			return err
		}
		if err := t.Publisher.Publish(mqtt.EventTopic(t.Meta.ID), payload, 0, false); err != nil {
			glog.Warningf("publish event %s: %v", ev.Tag, err)
		}
	}
	return nil
}

// Run implements Runnable.
func (t *Telemetry) Run(ctx context.Context) error {
	if err := t.queue.Connect(); err != nil {
		glog.Warningf("telemetry connect: %v", err)
	}
	<-ctx.Done()
	t.publishMeta(nil)
	return t.queue.Close()
}

// PublishMeta publishes the retained description.
func (t *Telemetry) PublishMeta() {
	t.publishMeta(t.metaJSON)
}

func (t *Telemetry) publishMeta(payload []byte) {
	if err := t.Publisher.Publish(mqtt.MetaTopic(t.Meta.ID), payload, 1, true); err != nil {
		glog.Warningf("publish meta: %v", err)
	}
}
