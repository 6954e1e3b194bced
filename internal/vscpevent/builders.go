package vscpevent

import "vscpnode/internal/vscpconst"

// Information/Measurement type codes used by the small set of builders below.
// These are not part of the protocol dispatcher; they are thin payload
// packers for classes the core never interprets itself (§1 non-goals).
const (
	typeInformationNodeHeartbeat = 9
	typeMeasurementTemperature   = 6
)

// NodeHeartbeat builds an INFORMATION/NODE_HEARTBEAT event carrying the
// node's zone and sub-zone, emitted periodically by Core in the ACTIVE state.
func NodeHeartbeat(origin uint8, priority uint8, zone, subZone uint8) TxEvent {
	e := TxEvent{
		Class:    vscpconst.ClassInformation,
		Type:     typeInformationNodeHeartbeat,
		Priority: priority,
		Origin:   origin,
	}
	e.SetPayload(0, zone, subZone)
	return e
}

// MeasurementTemperature builds a MEASUREMENT/TEMPERATURE event. Used by
// simulation/test harnesses to exercise the decision matrix, not by Core
// itself.
func MeasurementTemperature(origin uint8, priority uint8, coding byte, value []byte) TxEvent {
	e := TxEvent{
		Class:    vscpconst.ClassMeasurement,
		Type:     typeMeasurementTemperature,
		Priority: priority,
		Origin:   origin,
	}
	data := append([]byte{coding}, value...)
	e.SetPayload(data...)
	return e
}
