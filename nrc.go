package eurodiag

// Nrc is a KWP2000 negative response code, the single byte carried in the
// third position of a negative response frame (0x7F, sid, nrc).
type Nrc byte

const (
	NrcGeneralReject                    Nrc = 0x10
	NrcServiceNotSupported               Nrc = 0x11
	NrcSubFunctionNotSupported           Nrc = 0x12
	NrcRepeatRequest                     Nrc = 0x21
	NrcConditionsNotCorrect              Nrc = 0x22
	NrcRequestSequenceError              Nrc = 0x24
	NrcRequestOutOfRange                 Nrc = 0x31
	NrcSecurityAccessDenied              Nrc = 0x33
	NrcInvalidKey                        Nrc = 0x35
	NrcExceedNumberOfAttempts            Nrc = 0x36
	NrcRequiredTimeDelayNotExpired       Nrc = 0x37
	NrcDownloadNotAccepted               Nrc = 0x40
	NrcImproperDownloadType              Nrc = 0x41
	NrcCannotDownloadToSpecifiedAddress  Nrc = 0x42
	NrcCannotDownloadNumberOfBytes       Nrc = 0x43
	NrcUploadNotAccepted                 Nrc = 0x50
	NrcImproperUploadType                Nrc = 0x51
	NrcCannotUploadFromSpecifiedAddress  Nrc = 0x52
	NrcCannotUploadNumberOfBytes         Nrc = 0x53
	NrcTransferSuspended                 Nrc = 0x71
	NrcTransferAborted                   Nrc = 0x72
	NrcIllegalAddressInBlockTransfer     Nrc = 0x74
	NrcIllegalByteCountInBlockTransfer   Nrc = 0x75
	NrcIllegalBlockTransferType          Nrc = 0x76
	NrcBlockTransferDataChecksumError    Nrc = 0x77
	NrcResponsePending                   Nrc = 0x78
	NrcIncorrectByteCountDuringTransfer  Nrc = 0x79
)

var nrcDescriptionMap = map[Nrc]string{
	NrcGeneralReject:                   "general reject",
	NrcServiceNotSupported:             "service not supported",
	NrcSubFunctionNotSupported:         "sub-function not supported / invalid format",
	NrcRepeatRequest:                   "busy, repeat request",
	NrcConditionsNotCorrect:            "conditions not correct or request sequence error",
	NrcRequestSequenceError:            "request sequence error",
	NrcRequestOutOfRange:               "request out of range",
	NrcSecurityAccessDenied:            "security access denied",
	NrcInvalidKey:                      "invalid key",
	NrcExceedNumberOfAttempts:          "exceeded number of attempts",
	NrcRequiredTimeDelayNotExpired:     "required time delay not expired",
	NrcDownloadNotAccepted:             "download not accepted",
	NrcImproperDownloadType:            "improper download type",
	NrcCannotDownloadToSpecifiedAddress: "cannot download to specified address",
	NrcCannotDownloadNumberOfBytes:     "cannot download specified number of bytes",
	NrcUploadNotAccepted:               "upload not accepted",
	NrcImproperUploadType:              "improper upload type",
	NrcCannotUploadFromSpecifiedAddress: "cannot upload from specified address",
	NrcCannotUploadNumberOfBytes:       "cannot upload specified number of bytes",
	NrcTransferSuspended:               "transfer suspended",
	NrcTransferAborted:                 "transfer aborted",
	NrcIllegalAddressInBlockTransfer:   "illegal address in block transfer",
	NrcIllegalByteCountInBlockTransfer: "illegal byte count in block transfer",
	NrcIllegalBlockTransferType:        "illegal block transfer type",
	NrcBlockTransferDataChecksumError:  "block transfer data checksum error",
	NrcResponsePending:                 "request correctly received, response pending",
	NrcIncorrectByteCountDuringTransfer: "incorrect byte count during block transfer",
}

// NrcDescription returns the human-readable kind for a raw NRC byte, or
// "unknown NRC" for values outside the fixed table.
func NrcDescription(raw byte) string {
	if d, ok := nrcDescriptionMap[Nrc(raw)]; ok {
		return d
	}
	return "unknown NRC"
}

// IsPending reports whether nrc is the response-pending marker (0x78),
// which must not terminate a client's wait for a final response.
func IsPending(nrc byte) bool { return nrc == byte(NrcResponsePending) }
