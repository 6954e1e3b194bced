// Package vscputil carries the small platform-independent helpers §4.6 and
// §4.8 describe: a zone-byte lookup table and a fixed-capacity cyclic
// buffer.
package vscputil

import "vscpnode/internal/vscpconst"

// A handful of class-local type codes the zone lookup needs to special-case,
// ported from vscp_util.c's switch over (class, type).
const (
	typeInformationStreamData         = 34
	typeInformationStreamDataWithZone = 35
	typeInformationConfirm            = 41

	typeControlDeactivate = 2
	typeControlDimLamp    = 16
	typeControlStreamData = 28

	typePhoneAnswer = 2
)

// ZoneIndex returns the index into an event's data payload where its zone
// byte lives, and whether the event carries zone information at all. The
// sub-zone byte, when present, always immediately follows at idx+1.
//
// Every type 0 event, independent of class, carries no zone information.
func ZoneIndex(class uint16, typ uint8) (idx int, ok bool) {
	if typ == 0 {
		return 0, false
	}

	switch class {
	case vscpconst.ClassAlarm,
		vscpconst.ClassSecurity,
		vscpconst.ClassAlertOnLAN,
		vscpconst.ClassMeasureZone,
		vscpconst.ClassSetValueWithZone,
		vscpconst.ClassWeather,
		vscpconst.ClassWeatherForecast,
		vscpconst.ClassDiagnostic,
		vscpconst.ClassError:
		return 1, true

	case vscpconst.ClassInformation:
		switch typ {
		case typeInformationStreamDataWithZone, typeInformationConfirm:
			return 0, true
		case typeInformationStreamData:
			return 0, false
		default:
			return 1, true
		}

	case vscpconst.ClassControl:
		if typ <= typeControlDeactivate || (typ >= typeControlDimLamp && typ != typeControlStreamData) {
			return 1, true
		}
		return 0, false

	case vscpconst.ClassPhone:
		if typ == typePhoneAnswer {
			return 1, true
		}
		return 0, false

	default:
		return 0, false
	}
}

// SubZoneIndex is always ZoneIndex()+1 when ZoneIndex reports a zone.
func SubZoneIndex(zoneIdx int) int { return zoneIdx + 1 }
