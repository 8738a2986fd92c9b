package kwp2000

import "time"

// TimingParameters is the five-byte AccessTimingParameter record.
// p2min/p3min/p4min are in units of 0.5ms, p2max is in units of 25ms and
// p3max is in units of 250ms.
type TimingParameters struct {
	P2Min byte
	P2Max byte
	P3Min byte
	P3Max byte
	P4Min byte
}

// Encode serializes the record to its five-byte wire form.
func (t TimingParameters) Encode() [5]byte {
	return [5]byte{t.P2Min, t.P2Max, t.P3Min, t.P3Max, t.P4Min}
}

// DecodeTiming parses a five-byte AccessTimingParameter body.
func DecodeTiming(raw [5]byte) TimingParameters {
	return TimingParameters{P2Min: raw[0], P2Max: raw[1], P3Min: raw[2], P3Max: raw[3], P4Min: raw[4]}
}

func (t TimingParameters) P2MinDuration() time.Duration { return halfMs(t.P2Min) }
func (t TimingParameters) P2MaxDuration() time.Duration { return time.Duration(t.P2Max) * 25 * time.Millisecond }
func (t TimingParameters) P3MinDuration() time.Duration { return halfMs(t.P3Min) }
func (t TimingParameters) P3MaxDuration() time.Duration { return time.Duration(t.P3Max) * 250 * time.Millisecond }
func (t TimingParameters) P4MinDuration() time.Duration { return halfMs(t.P4Min) }

func halfMs(v byte) time.Duration {
	return time.Duration(v) * 500 * time.Microsecond
}

// Three named presets, carrying two distinct byte patterns, are carried
// forward from the source this protocol was distilled from, which defines
// them under ambiguous and conflicting names (one file calls
// byte-identical values "minimal", another calls them "standard"; a
// second, differently-valued "standard" exists elsewhere). Rather than
// collapse them into a single guessed value, all three are exposed so
// callers can pick explicitly.

// TimingMinimal and TimingStandardA share byte values (0x32, 0x02, 0x6E,
// 0x14, 0x0A) across the two source files that disagree on which name is
// canonical.
var TimingMinimal = TimingParameters{P2Min: 0x32, P2Max: 0x02, P3Min: 0x6E, P3Max: 0x14, P4Min: 0x0A}
var TimingStandardA = TimingMinimal

// TimingStandardB is the second, differently-valued "standard" preset
// found in the source.
var TimingStandardB = TimingParameters{P2Min: 0x32, P2Max: 0x02, P3Min: 0x6E, P3Max: 0x01, P4Min: 0x00}
