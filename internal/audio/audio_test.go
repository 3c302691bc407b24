package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeDecodeBuffer(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x7f, 0x80, 0xff}
	enc := EncodeBuffer(raw)
	dec, err := DecodeBuffer(enc)
	if err != nil {
		t.Fatalf("DecodeBuffer: %v", err)
	}
	if !bytes.Equal(dec, raw) {
		t.Fatalf("round trip mismatch: got %v want %v", dec, raw)
	}
}

func TestDecodeBufferInvalid(t *testing.T) {
	if _, err := DecodeBuffer("not*base64"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestWAVFromPCM(t *testing.T) {
	pcm := make([]byte, 3200)
	wav := WAVFromPCM(pcm, 24000, 2, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("length = %d; want %d", len(wav), 44+len(pcm))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Fatalf("missing RIFF/WAVE markers: %q %q", wav[0:4], wav[8:12])
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Fatalf("file size = %d; want %d", got, 36+len(pcm))
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Fatalf("sample rate = %d; want 24000", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 48000 {
		t.Fatalf("byte rate = %d; want 48000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Fatalf("bits per sample = %d; want 16", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("data size = %d; want %d", got, len(pcm))
	}
}
