package kwp2000

import (
	"github.com/samsamfire/eurodiag"
)

// ParseResponse validates a raw response against the service id that was
// sent and returns the body that follows the (positive or echoed)
// service/NRC header.
//
//   - A negative response (R[0] == 0x7F) with NRC 0x78 (pending) returns
//     (nil, true, nil): the caller must keep waiting.
//   - Any other negative response returns a *eurodiag.NegativeResponse.
//   - A positive response whose id does not match PositiveId(sid) returns
//     a bad-positive-id *eurodiag.InvalidFrame.
func ParseResponse(sid ServiceId, raw []byte) (body []byte, pending bool, err error) {
	if len(raw) == 0 {
		return nil, false, &eurodiag.InvalidFrame{Reason: "empty response"}
	}
	if raw[0] == negativeResponseId {
		if len(raw) < 3 {
			return nil, false, &eurodiag.InvalidFrame{Reason: "short negative response"}
		}
		nrc := raw[2]
		if eurodiag.IsPending(nrc) {
			return nil, true, nil
		}
		return nil, false, &eurodiag.NegativeResponse{Sid: raw[1], Nrc: nrc}
	}
	want := PositiveId(sid)
	if raw[0] != want {
		return nil, false, &eurodiag.InvalidFrame{Reason: "bad positive response id"}
	}
	return raw[1:], false, nil
}
