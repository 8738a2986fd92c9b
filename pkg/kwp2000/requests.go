package kwp2000

// Each Encode* builds the request body *after* the leading service id
// byte; Client.SendRequest prepends the id before writing to the
// transport.

func be24(v uint32) [3]byte { return [3]byte{byte(v >> 16), byte(v >> 8), byte(v)} }

func EncodeStartDiagnosticSession(mode byte, baudId *byte) []byte {
	if baudId != nil {
		return []byte{mode, *baudId}
	}
	return []byte{mode}
}

func EncodeECUReset(resetType byte) []byte { return []byte{resetType} }

func EncodeReadFreezeFrameData(frameNum byte) []byte { return []byte{frameNum} }

func EncodeReadDTC() []byte { return nil }

func EncodeClearDiagnosticInfo(groupId byte) []byte { return []byte{groupId} }

func EncodeReadDTCStatus() []byte { return nil }

func EncodeReadDTCByStatus(mask byte) []byte { return []byte{mask} }

func EncodeReadEcuIdentification(option *byte) []byte {
	if option != nil {
		return []byte{*option}
	}
	return nil
}

func EncodeReadDataByLocalIdentifier(lid byte) []byte { return []byte{lid} }

func EncodeReadDataByCommonIdentifier(cid uint16) []byte {
	return []byte{byte(cid >> 8), byte(cid)}
}

// EncodeReadMemoryByAddress builds the request for the addr-echo response
// variant: 24-bit address BE, size, optional mode and max.
func EncodeReadMemoryByAddress(addr uint32, size byte, mode, max *byte) []byte {
	a := be24(addr)
	body := []byte{a[0], a[1], a[2], size}
	if mode != nil {
		body = append(body, *mode)
	}
	if max != nil {
		body = append(body, *max)
	}
	return body
}

// EncodeReadMemoryByAddressTyped builds the variant request carrying an
// explicit memory type ahead of size (the no-addr-echo response shape).
func EncodeReadMemoryByAddressTyped(addr uint32, memType, size byte) []byte {
	a := be24(addr)
	return []byte{a[0], a[1], a[2], memType, size}
}

func EncodeSetDataRates(rateId byte) []byte { return []byte{rateId} }

func EncodeSecurityAccess(accessType byte, data []byte) []byte {
	body := []byte{accessType}
	return append(body, data...)
}

func EncodeDynamicallyDefineLocalIdentifier(subFn byte, definition []byte) []byte {
	body := []byte{subFn}
	return append(body, definition...)
}

func EncodeWriteDataByCommonIdentifier(cid uint16, data []byte) []byte {
	body := []byte{byte(cid >> 8), byte(cid)}
	return append(body, data...)
}

func EncodeIOCtlByCommonIdentifier(cid uint16, controlParam byte, state []byte) []byte {
	body := []byte{byte(cid >> 8), byte(cid), controlParam}
	return append(body, state...)
}

func EncodeIOCtlByLocalIdentifier(lid, controlParam byte, state []byte) []byte {
	body := []byte{lid, controlParam}
	return append(body, state...)
}

func EncodeRoutineControlByLocalIdentifier(ctrlType byte, routine uint16) []byte {
	return []byte{ctrlType, byte(routine >> 8), byte(routine)}
}

func EncodeStopRoutineByLocalIdentifier(routine uint16) []byte {
	return []byte{byte(routine >> 8), byte(routine)}
}

func EncodeRequestRoutineResultsByLID(routine uint16) []byte {
	return []byte{byte(routine >> 8), byte(routine)}
}

func EncodeRequestDownload(addr, size uint32, comp, enc *byte) []byte {
	a, s := be24(addr), be24(size)
	body := []byte{a[0], a[1], a[2], s[0], s[1], s[2]}
	if comp != nil {
		body = append(body, *comp)
	}
	if enc != nil {
		body = append(body, *enc)
	}
	return body
}

func EncodeRequestUpload(addr, size uint32, comp, enc *byte) []byte {
	return EncodeRequestDownload(addr, size, comp, enc)
}

func EncodeTransferData(blockSeq byte, data []byte) []byte {
	body := []byte{blockSeq}
	return append(body, data...)
}

func EncodeRequestTransferExit(params []byte) []byte { return params }

func EncodeStartRoutineByAddress(addr uint32, options []byte) []byte {
	a := be24(addr)
	body := []byte{a[0], a[1], a[2]}
	return append(body, options...)
}

func EncodeStopRoutineByAddress(addr uint32, options []byte) []byte {
	return EncodeStartRoutineByAddress(addr, options)
}

func EncodeRequestRoutineResultsByAddress(addr uint32, options []byte) []byte {
	return EncodeStartRoutineByAddress(addr, options)
}

func EncodeWriteDataByLocalIdentifier(lid byte, data []byte) []byte {
	body := []byte{lid}
	return append(body, data...)
}

func EncodeWriteMemoryByAddress(addr uint32, data []byte) []byte {
	a := be24(addr)
	body := []byte{a[0], a[1], a[2], byte(len(data))}
	return append(body, data...)
}

// responseRequired bytes for TesterPresent.
const (
	TesterPresentResponseRequired = 0x01
	TesterPresentResponseNone     = 0x02
)

func EncodeTesterPresent(responseRequired byte) []byte { return []byte{responseRequired} }

func EncodeEscCode(opaque []byte) []byte { return opaque }

func EncodeStartCommunication(keyBytes []byte) []byte { return keyBytes }

func EncodeStopCommunication() []byte { return nil }

func EncodeAccessTimingParameter(tpid byte, t TimingParameters) []byte {
	enc := t.Encode()
	return []byte{tpid, enc[0], enc[1], enc[2], enc[3], enc[4]}
}

func EncodeSendData(data []byte) []byte { return data }
