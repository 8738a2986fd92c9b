// Package kwp2000 implements the ISO 14230 KWP2000 service catalog,
// request/response codec, negative-response handling and a stateful
// client façade over a byte or CAN transport.
package kwp2000

// ServiceId identifies a KWP2000 service by its request-frame first byte.
type ServiceId byte

const (
	StartDiagnosticSession          ServiceId = 0x10
	ECUReset                        ServiceId = 0x11
	ReadFreezeFrameData             ServiceId = 0x12
	ReadDTC                         ServiceId = 0x13
	ClearDiagnosticInfo             ServiceId = 0x14
	ReadDTCStatus                   ServiceId = 0x17
	ReadDTCByStatus                 ServiceId = 0x18
	ReadEcuIdentification           ServiceId = 0x1A
	StopDiagnosticSession           ServiceId = 0x20
	ReadDataByLocalIdentifier       ServiceId = 0x21
	ReadDataByCommonIdentifier      ServiceId = 0x22
	ReadMemoryByAddress             ServiceId = 0x23
	SetDataRates                    ServiceId = 0x26
	SecurityAccess                  ServiceId = 0x27
	DynamicallyDefineLocalId        ServiceId = 0x2C
	WriteDataByCommonIdentifier     ServiceId = 0x2E
	IOCtlByCommonIdentifier         ServiceId = 0x2F
	IOCtlByLocalIdentifier          ServiceId = 0x30
	RoutineControlByLocalIdentifier ServiceId = 0x31
	StopRoutineByLocalIdentifier    ServiceId = 0x32
	RequestRoutineResultsByLID      ServiceId = 0x33
	RequestDownload                 ServiceId = 0x34
	RequestUpload                   ServiceId = 0x35
	TransferData                    ServiceId = 0x36
	RequestTransferExit             ServiceId = 0x37
	StartRoutineByAddress           ServiceId = 0x38
	StopRoutineByAddress            ServiceId = 0x39
	RequestRoutineResultsByAddress  ServiceId = 0x3A
	WriteDataByLocalIdentifier      ServiceId = 0x3B
	WriteMemoryByAddress            ServiceId = 0x3D
	TesterPresent                   ServiceId = 0x3E
	EscCode                         ServiceId = 0x80
	StartCommunication              ServiceId = 0x81
	StopCommunication               ServiceId = 0x82
	AccessTimingParameter           ServiceId = 0x83
	SendData                        ServiceId = 0x84

	negativeResponseId = 0x7F
)

// positiveIdExceptions are the three services whose positive response id
// does not follow the sid+0x40 rule.
var positiveIdExceptions = map[ServiceId]byte{
	TesterPresent:         0x7E,
	EscCode:               0xC0,
	AccessTimingParameter: 0xC3,
}

// PositiveId returns the expected positive-response service id for sid,
// applying the three published exceptions.
func PositiveId(sid ServiceId) byte {
	if id, ok := positiveIdExceptions[sid]; ok {
		return id
	}
	return byte(sid) + 0x40
}
