package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/atx.go/pkg/framework"
)

// Actuation reports a command word processed by the actuator.
type Actuation struct {
	Code        uint32 `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Tag         string `protobuf:"bytes,2,opt,name=tag,proto3" json:"tag,omitempty"`
	Recognized  bool   `protobuf:"varint,3,opt,name=recognized,proto3" json:"recognized,omitempty"`
	Target      uint32 `protobuf:"varint,4,opt,name=target,proto3" json:"target,omitempty"`
	Action      string `protobuf:"bytes,5,opt,name=action,proto3" json:"action,omitempty"`
	Pin         int32  `protobuf:"varint,6,opt,name=pin,proto3" json:"pin,omitempty"`
	DurationMs  uint32 `protobuf:"varint,7,opt,name=duration_ms,json=durationMs,proto3" json:"duration_ms,omitempty"`
	StartedAtNs int64  `protobuf:"varint,8,opt,name=started_at_ns,json=startedAtNs,proto3" json:"started_at_ns,omitempty"`
	ElapsedUs   int64  `protobuf:"varint,9,opt,name=elapsed_us,json=elapsedUs,proto3" json:"elapsed_us,omitempty"`
}

// Reset implements proto.Message.
func (m *Actuation) Reset() { *m = Actuation{} }

// String implements proto.Message.
func (m *Actuation) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Actuation) ProtoMessage() {}

// NewMessage implements fx.Message.
func (m *Actuation) NewMessage() fx.Message { return &Actuation{} }

// StartedAt converts StartedAtNs.
func (m *Actuation) StartedAt() time.Time {
	return time.Unix(0, m.StartedAtNs)
}

// Elapsed converts ElapsedUs.
func (m *Actuation) Elapsed() time.Duration {
	return time.Duration(m.ElapsedUs) * time.Microsecond
}

// Encode serializes the event.
func (m *Actuation) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeActuation parses an event payload.
func DecodeActuation(data []byte) (*Actuation, error) {
	var m Actuation
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeviceMeta is the retained description of a running bridge.
type DeviceMeta struct {
	ID          string            `json:"id"`
	Description string            `json:"description,omitempty"`
	Transport   string            `json:"transport,omitempty"`
	Commands    []string          `json:"commands,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}
