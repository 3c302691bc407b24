// Package audio provides helpers for the PCM16 buffers exchanged with
// clients and with the realtime upstream.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeBuffer converts a raw audio buffer to its base64 wire form.
func EncodeBuffer(buf []byte) string {
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeBuffer converts a base64 payload back into a raw audio buffer.
func DecodeBuffer(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return b, nil
}

// WAVFromPCM wraps raw PCM samples in a RIFF/WAVE container.
// sampleWidth is in bytes per sample (2 for PCM16).
func WAVFromPCM(pcm []byte, sampleRate, sampleWidth, channels int) []byte {
	dataSize := len(pcm)
	header := make([]byte, 0, 44)

	// RIFF chunk descriptor
	header = append(header, 'R', 'I', 'F', 'F')
	header = binary.LittleEndian.AppendUint32(header, uint32(36+dataSize))
	header = append(header, 'W', 'A', 'V', 'E')

	// fmt sub-chunk
	header = append(header, 'f', 'm', 't', ' ')
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, 1) // PCM
	header = binary.LittleEndian.AppendUint16(header, uint16(channels))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate*channels*sampleWidth))
	header = binary.LittleEndian.AppendUint16(header, uint16(channels*sampleWidth))
	header = binary.LittleEndian.AppendUint16(header, uint16(sampleWidth*8))

	// data sub-chunk
	header = append(header, 'd', 'a', 't', 'a')
	header = binary.LittleEndian.AppendUint32(header, uint32(dataSize))

	return append(header, pcm...)
}
