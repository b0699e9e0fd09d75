package main

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// WAV format constants
const (
	wavHeaderSize      = 44 // Total WAV header size in bytes
	wavRiffHeaderSize  = 36 // RIFF header size (file size - 8 = riffHeaderSize + dataSize)
	wavPCMSubchunkSize = 16 // fmt subchunk size for PCM format
	wavFileSizeOffset  = 4  // Byte offset for file size field in header
	wavDataSizeOffset  = 40 // Byte offset for data size field in header

	bytesPerSample16 = 2
	bytesPerSample24 = 3
	bytesPerSample32 = 4
	bitsPerByte      = 8

	bitShift8  = 8
	bitShift16 = 16

	wavWriterBufferSize = 256 * 1024
	uint32Size          = 4
)

// fastWAVWriter writes PCM data directly without per-sample allocations.
// The header sizes are patched on Close.
type fastWAVWriter struct {
	w          *bufio.Writer
	f          io.WriteSeeker
	sampleRate int
	bitDepth   int
	channels   int
	dataSize   uint32
	byteBuf    []byte
}

func newFastWAVWriter(f *os.File, sampleRate, bitDepth, channels int) (*fastWAVWriter, error) {
	w := &fastWAVWriter{
		w:          bufio.NewWriterSize(f, wavWriterBufferSize),
		f:          f,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
		byteBuf:    make([]byte, bufferSize*channels*(bitDepth/bitsPerByte)),
	}

	// placeholder sizes until Close
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *fastWAVWriter) writeHeader() error {
	byteRate := w.sampleRate * w.channels * (w.bitDepth / bitsPerByte)
	blockAlign := w.channels * (w.bitDepth / bitsPerByte)

	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.bitDepth))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0)

	_, err := w.w.Write(header)
	return err
}

func (w *fastWAVWriter) scratch(n int) []byte {
	if len(w.byteBuf) < n {
		w.byteBuf = make([]byte, n)
	}
	return w.byteBuf[:n]
}

func (w *fastWAVWriter) write(buf []byte) error {
	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// WriteInt16 writes 16-bit PCM samples.
func (w *fastWAVWriter) WriteInt16(samples []int16) error {
	buf := w.scratch(len(samples) * bytesPerSample16)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*bytesPerSample16:], uint16(s))
	}
	return w.write(buf)
}

// WriteInt32 writes full-scale 32-bit samples at the writer's bit depth;
// 24-bit output keeps the top three bytes.
func (w *fastWAVWriter) WriteInt32(samples []int32) error {
	if w.bitDepth == bitsPerSample24 {
		buf := w.scratch(len(samples) * bytesPerSample24)
		for i, s := range samples {
			v := s >> bitShift8
			buf[i*bytesPerSample24] = byte(v)
			buf[i*bytesPerSample24+1] = byte(v >> bitShift8)
			buf[i*bytesPerSample24+2] = byte(v >> bitShift16)
		}
		return w.write(buf)
	}

	buf := w.scratch(len(samples) * bytesPerSample32)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*bytesPerSample32:], uint32(s))
	}
	return w.write(buf)
}

// Close flushes the buffer and updates the WAV header with final sizes.
func (w *fastWAVWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	sizeBytes := make([]byte, uint32Size)
	for _, field := range []struct {
		offset int64
		value  uint32
	}{
		{wavFileSizeOffset, wavRiffHeaderSize + w.dataSize},
		{wavDataSizeOffset, w.dataSize},
	} {
		if _, err := w.f.Seek(field.offset, io.SeekStart); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(sizeBytes, field.value)
		if _, err := w.f.Write(sizeBytes); err != nil {
			return err
		}
	}
	return nil
}
