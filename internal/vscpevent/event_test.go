package vscpevent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetPayloadClampsToMaxDataLen(t *testing.T) {
	e := Event{}
	e.SetPayload(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	require.Equal(t, uint8(MaxDataLen), e.DataLen)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, e.Payload())
}

func TestPayloadReflectsDataLen(t *testing.T) {
	e := Event{}
	e.SetPayload(9, 8, 7)
	require.Equal(t, []byte{9, 8, 7}, e.Payload())
}

func TestRxTxEventShareImplementation(t *testing.T) {
	var rx RxEvent
	rx.SetPayload(1, 2)
	require.Equal(t, []byte{1, 2}, rx.Payload())

	var tx TxEvent
	tx.SetPayload(3, 4)
	require.Equal(t, []byte{3, 4}, tx.Payload())
}

func TestNodeHeartbeatPayload(t *testing.T) {
	e := NodeHeartbeat(0x12, 3, 5, 6)
	require.Equal(t, []byte{0, 5, 6}, e.Payload())
	require.Equal(t, uint8(0x12), e.Origin)
}

func TestMeasurementTemperaturePayload(t *testing.T) {
	e := MeasurementTemperature(0x01, 3, 0x89, []byte{0x00, 0xC8})
	require.Equal(t, []byte{0x89, 0x00, 0xC8}, e.Payload())
}
