// Package msgs defines the messages published by the bridge.
//
// Events are published to "<prefix><id>/events" as protobuf payloads.
// The retained "<prefix><id>/meta" topic carries JSON DeviceMeta and is
// cleared by the broker when the bridge goes away.
package msgs
