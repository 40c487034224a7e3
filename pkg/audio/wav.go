package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
)

// Kind classifies a raw payload before normalization. Classification is a
// separate, explicit step so that call sites never probe bytes ad hoc.
type Kind int

const (
	// KindInvalid marks payloads too small to be audio at all.
	KindInvalid Kind = iota

	// KindWAV marks payloads carrying a RIFF/WAVE signature.
	KindWAV

	// KindRawPCM marks payloads without a container signature, treated as
	// headerless sample data at the default profile.
	KindRawPCM
)

// String returns the classification name for logging.
func (k Kind) String() string {
	switch k {
	case KindWAV:
		return "wav"
	case KindRawPCM:
		return "raw-pcm"
	default:
		return "invalid"
	}
}

var riffMagic = []byte("RIFF")

// Classify inspects a payload and reports its container kind. It never
// parses past the signature; use [Normalize] to obtain a [Buffer].
func Classify(data []byte) Kind {
	if len(data) < MinPayloadBytes {
		return KindInvalid
	}
	if bytes.HasPrefix(data, riffMagic) {
		return KindWAV
	}
	return KindRawPCM
}

// Normalize converts an arbitrary audio payload into a canonical [Buffer].
//
// Payloads with a RIFF signature are parsed as WAV containers. When the
// header turns out to be malformed despite the signature, or when no
// signature is present at all, the entire payload is treated as raw PCM at
// the default profile (mono, 16-bit, 24 kHz). Generation services omit the
// container header non-deterministically; discarding such responses would
// throw away perfectly usable audio.
//
// Returns [ErrTooSmall] for payloads under [MinPayloadBytes].
func Normalize(data []byte) (*Buffer, error) {
	switch Classify(data) {
	case KindInvalid:
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, len(data))
	case KindWAV:
		buf, err := parseWAV(data)
		if err != nil {
			slog.Warn("audio: RIFF signature present but header unreadable, falling back to raw PCM", "err", err)
			return rawPCMBuffer(data), nil
		}
		return buf, nil
	default:
		return rawPCMBuffer(data), nil
	}
}

// rawPCMBuffer wraps a headerless payload at the default profile. A trailing
// partial frame is dropped so the buffer stays frame-aligned.
func rawPCMBuffer(data []byte) *Buffer {
	frameSize := DefaultChannels * DefaultSampleWidth
	n := (len(data) / frameSize) * frameSize
	payload := make([]byte, n)
	copy(payload, data[:n])
	return &Buffer{
		Data:        payload,
		Channels:    DefaultChannels,
		SampleWidth: DefaultSampleWidth,
		SampleRate:  DefaultSampleRate,
	}
}

// parseWAV extracts format parameters and the sample payload from a RIFF/WAVE
// container. Only uncompressed PCM (format tag 1) is supported; the single
// container type is all the pipeline ever produces.
func parseWAV(data []byte) (*Buffer, error) {
	if len(data) < 12 || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("missing WAVE form type")
	}

	var (
		channels   int
		width      int
		rate       int
		haveFmt    bool
		samples    []byte
		haveData   bool
	)

	// Walk the chunk list. Chunks are 2-byte aligned per the RIFF spec.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(data) {
			// Truncated chunk. A truncated data chunk is salvageable; anything
			// else means the header itself is broken.
			if id == "data" && haveFmt {
				size = len(data) - body
			} else {
				return nil, fmt.Errorf("chunk %q overruns payload", id)
			}
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too short (%d bytes)", size)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported format tag %d (PCM only)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if bits%8 != 0 {
				return nil, fmt.Errorf("non-byte-aligned bit depth %d", bits)
			}
			width = bits / 8
			haveFmt = true
		case "data":
			samples = data[body : body+size]
			haveData = true
		}

		pos = body + size
		if size%2 == 1 {
			pos++ // chunk padding byte
		}
	}

	if !haveFmt || !haveData {
		return nil, fmt.Errorf("container missing fmt or data chunk")
	}

	buf := &Buffer{
		Data:        append([]byte(nil), samples...),
		Channels:    channels,
		SampleWidth: width,
		SampleRate:  rate,
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// WAV serializes the buffer as a canonical RIFF/WAVE container. This is the
// single re-entry point back into container form after raw-PCM manipulation.
func (b *Buffer) WAV() []byte {
	dataSize := len(b.Data)
	out := make([]byte, 0, 44+dataSize)
	w := bytes.NewBuffer(out)

	byteRate := b.SampleRate * b.Channels * b.SampleWidth
	blockAlign := b.Channels * b.SampleWidth

	w.WriteString("RIFF")
	binary.Write(w, binary.LittleEndian, uint32(36+dataSize))
	w.WriteString("WAVE")

	w.WriteString("fmt ")
	binary.Write(w, binary.LittleEndian, uint32(16))
	binary.Write(w, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(w, binary.LittleEndian, uint16(b.Channels))
	binary.Write(w, binary.LittleEndian, uint32(b.SampleRate))
	binary.Write(w, binary.LittleEndian, uint32(byteRate))
	binary.Write(w, binary.LittleEndian, uint16(blockAlign))
	binary.Write(w, binary.LittleEndian, uint16(b.SampleWidth*8))

	w.WriteString("data")
	binary.Write(w, binary.LittleEndian, uint32(dataSize))
	w.Write(b.Data)

	return w.Bytes()
}
