// Package vscpconst carries the numeric tables of the VSCP Level 1 wire
// protocol: class identifiers, PROTOCOL-class type codes, system register
// addresses, default timeouts and the DM / DM-NG bytecode constants.
package vscpconst

// Event classes (VSCP_CLASS_L1_*). 512-1023 is reserved for L1-over-L2.
const (
	ClassProtocol           = 0
	ClassAlarm              = 1
	ClassSecurity           = 2
	ClassMeasurement        = 10
	ClassData               = 15
	ClassInformation        = 20
	ClassControl            = 30
	ClassMultimedia         = 40
	ClassAlertOnLAN         = 50
	ClassMeasurementDouble  = 60
	ClassMeasureZone        = 65
	ClassMeasurementSingle  = 70
	ClassSetValueWithZone   = 85
	ClassWeather            = 90
	ClassWeatherForecast    = 95
	ClassPhone              = 100
	ClassDisplay            = 102
	ClassRemote             = 110
	ClassGNSS               = 206
	ClassWireless           = 212
	ClassDiagnostic         = 506
	ClassError              = 508
	ClassLog                = 509
	ClassLaboratory         = 510
	ClassLocal              = 511
)

// PROTOCOL class (class 0) event types.
const (
	ProtoGeneral                   = 0
	ProtoSegControllerHeartbeat    = 1
	ProtoNewNodeOnline             = 2 // a.k.a. probe
	ProtoProbeAck                  = 3
	ProtoSetNickname               = 6
	ProtoNicknameAccepted          = 7
	ProtoDropNickname              = 8
	ProtoReadRegister              = 9
	ProtoRWResponse                = 10
	ProtoWriteRegister             = 11
	ProtoEnterBootLoader           = 12
	ProtoEnterBootLoaderAck        = 13
	ProtoNACKBootLoader            = 14
	ProtoResetDeviceGUID           = 23 // GUID_DROP_NICKNAME_ID, §4.2.2 multi-frame reset
	ProtoPageRead                  = 24
	ProtoPageWrite                 = 25
	ProtoRWPageResponse            = 26
	ProtoHighEndServerProbe        = 27
	ProtoHighEndServerResponse     = 28
	ProtoIncrementRegister         = 29
	ProtoDecrementRegister         = 30
	ProtoWhoIsThere                = 31
	ProtoWhoIsThereResponse        = 32
	ProtoGetMatrixInfo             = 33
	ProtoGetMatrixInfoResponse     = 34
	ProtoGetEmbeddedMDF            = 35
	ProtoGetEmbeddedMDFResponse    = 36
	ProtoExtendedPageRead          = 37
	ProtoExtendedPageWrite         = 38
	ProtoExtendedPageResponse      = 39
	ProtoGetEventInterest          = 40
	ProtoGetEventInterestResponse  = 41
)

// Priority levels, 0 = highest.
const (
	PriorityHighest = 0
	PriorityHigh    = 1
	PriorityNormal  = 3
	PriorityLow     = 7
)

// Nickname sentinels.
const (
	NicknameSegmentMaster = 0x00
	NicknameUninitialised = 0xFF
	NicknameMax           = 0xFE
)

// System register addresses, page 0.
const (
	RegAlarmStatus       = 0x80
	RegVSCPMajorVersion  = 0x81
	RegVSCPMinorVersion  = 0x82
	RegNodeControlFlags  = 0x83
	RegUserIDStart       = 0x84 // 0x84..0x88 (5 bytes)
	RegMfrDevIDStart     = 0x89 // 0x89..0x8C (4 bytes)
	RegMfrSubDevIDStart  = 0x8D // 0x8D..0x90 (4 bytes)
	RegNickname          = 0x91
	RegPageSelectMSB     = 0x92
	RegPageSelectLSB     = 0x93
	RegFirmwareMajor     = 0x94
	RegFirmwareMinor     = 0x95
	RegFirmwareSubMinor  = 0x96
	RegBootLoaderAlgo    = 0x97
	RegBufferSize        = 0x98
	RegPagesUsed         = 0x99
	RegFamilyCodeStart   = 0x9A // 0x9A..0x9D (4 bytes)
	RegDeviceTypeStart   = 0x9E // 0x9E..0xA1 (4 bytes)
	RegRestoreStdCfg     = 0xA2
	RegGUIDStart         = 0xD0 // 0xD0..0xDF, GUID byte 15 down to 0
	RegMDFURLStart       = 0xE0 // 0xE0..0xFF (32 bytes)

	RegSystemRangeStart = 0x80
	RegSystemRangeEnd   = 0xFF

	RegDMPagedIndex = 0x7E
	RegDMPagedValue = 0x7F
)

// Restore-standard-config (register 162) unlock sequence.
const (
	RestoreStdCfgUnlockStep1 = 0x55
	RestoreStdCfgUnlockStep2 = 0xAA
)

// Default timeouts, milliseconds.
const (
	DefaultNodeSegmentInitTimeoutMS = 5000
	DefaultProbeAckTimeoutMS        = 2000
	DefaultMultiMsgTimeoutMS        = 1000
	DefaultHeartbeatNodePeriodMS    = 1000
)

// Node control flags (persisted byte), bit positions.
const (
	NodeControlStartupMask     = 0xC0 // bits 6..7
	NodeControlStartupAuto     = 0x40 // 01b: auto-init at boot
	NodeControlStartupManual   = 0x80 // 10b: wait for manual init
	NodeControlRegWriteEnable  = 0x20 // bit 5
)

// DM standard-row flag bits.
const (
	DMFlagEnable          = 0x80
	DMFlagCheckOrigin     = 0x40
	DMFlagHardCoded       = 0x20
	DMFlagMatchZone       = 0x10
	DMFlagMatchSubZone    = 0x08
	DMFlagClassMaskBit8   = 0x02
	DMFlagClassFilterBit8 = 0x01
)

// DM extension trigger.
const DMActionIDExtension = 0xFF

// DM-NG basic operators (low nibble of the op byte).
const (
	DMNGBasicUndefined = 0
	DMNGBasicEqual     = 1
	DMNGBasicLower     = 2
	DMNGBasicGreater   = 3
	DMNGBasicLowerEq   = 4
	DMNGBasicGreaterEq = 5
	DMNGBasicMask      = 6
)

// DM-NG logic operators (high nibble of the op byte).
const (
	DMNGLogicLast = 0x00
	DMNGLogicAnd  = 0x10
	DMNGLogicOr   = 0x20
)

// DM-NG event parameter ids.
const (
	DMNGParUndefined = 0
	DMNGParClass     = 1
	DMNGParType      = 2
	DMNGParOAddr     = 3
	DMNGParHardCoded = 4
	DMNGParPriority  = 5
	DMNGParZone      = 6
	DMNGParSubZone   = 7
	DMNGParDataNum   = 8
	DMNGParData0     = 9
	DMNGParData1     = 10
	DMNGParData2     = 11
	DMNGParData3     = 12
	DMNGParData4     = 13
	DMNGParData5     = 14
	DMNGParData6     = 15
	DMNGParData      = 16 // indexed variant, next byte is the index
)

// DM-NG rule size bounds.
const (
	DMNGRuleMinSize = 6
	DMNGRuleMaxSize = 40
)

// Lamp states (platform status LED).
type LampState int

const (
	LampOff LampState = iota
	LampOn
	LampBlinkSlow
	LampBlinkFast
)
