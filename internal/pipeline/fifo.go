package pipeline

import (
	"fmt"
	"math/bits"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// FIFO is a growable circular queue of audio samples in one sample format.
//
// Capacity is a power of two so positions wrap with a mask. Writes never
// block or fail for lack of space: the FIFO doubles until the data fits and
// it is up to the caller to drain it. A FIFO is not safe for concurrent use.
type FIFO struct {
	format   buffer.SampleFormat
	channels int
	stride   int // bytes per sample frame in one plane

	planes   [][]byte
	mask     int // capacity - 1
	size     int
	readPos  int
	writePos int
}

// NewFIFO creates a FIFO holding channels channels of format samples.
// capacity is rounded up to the next power of two.
func NewFIFO(format buffer.SampleFormat, channels, capacity int) (*FIFO, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: fifo format %v", buffer.ErrInvalidArgument, format)
	}
	if channels < 1 || channels > buffer.MaxChannels {
		return nil, fmt.Errorf("%w: fifo channel count %d out of range [1, %d]",
			buffer.ErrInvalidArgument, channels, buffer.MaxChannels)
	}

	f := &FIFO{
		format:   format,
		channels: channels,
		stride:   format.BytesPerSample(),
	}
	planeCount := channels
	if !format.IsPlanar() {
		f.stride *= channels
		planeCount = 1
	}

	capacity = ceilPow2(max(capacity, 1))
	f.planes = make([][]byte, planeCount)
	for p := range f.planes {
		f.planes[p] = make([]byte, capacity*f.stride)
	}
	f.mask = capacity - 1
	return f, nil
}

func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Format returns the sample format stored in the FIFO.
func (f *FIFO) Format() buffer.SampleFormat { return f.format }

// Channels returns the channel count stored in the FIFO.
func (f *FIFO) Channels() int { return f.channels }

// Available returns the number of samples ready to be read.
func (f *FIFO) Available() int { return f.size }

// Capacity returns the number of samples the FIFO holds before it grows.
func (f *FIFO) Capacity() int { return f.mask + 1 }

// Space returns the room left before the next write grows the FIFO.
func (f *FIFO) Space() int { return f.Capacity() - f.size }

// Clear discards every queued sample.
func (f *FIFO) Clear() {
	f.size = 0
	f.readPos = 0
	f.writePos = 0
}

func (f *FIFO) check(b *buffer.Buffer) error {
	if b.Format() != f.format || b.Channels() != f.channels {
		return fmt.Errorf("%w: fifo holds %d ch %v, %s is %d ch %v",
			buffer.ErrInvalidArgument, f.channels, f.format, b.Name(), b.Channels(), b.Format())
	}
	return nil
}

// Write appends n samples of src starting at offset, growing as needed.
func (f *FIFO) Write(src *buffer.Buffer, offset, n int) error {
	if err := f.check(src); err != nil {
		return err
	}
	if offset < 0 || n < 0 || offset+n > src.Samples() {
		return fmt.Errorf("%w: fifo write of %d samples at %d from %s holding %d",
			buffer.ErrInvalidArgument, n, offset, src.Name(), src.Samples())
	}
	if n == 0 {
		return nil
	}

	if f.size+n > f.Capacity() {
		f.grow(f.size + n)
	}

	srcPlanes := src.Planes()
	for p, plane := range f.planes {
		in := srcPlanes[p][offset*f.stride : (offset+n)*f.stride]
		f.store(plane, f.writePos, in)
	}
	f.writePos = (f.writePos + n) & f.mask
	f.size += n
	return nil
}

// Read moves up to n samples into dst starting at its first sample and
// sets dst's sample count. A growable dst is reallocated to fit; otherwise
// the read is limited by its capacity. A nil dst discards the samples.
// Read returns the number of samples removed from the FIFO.
func (f *FIFO) Read(dst *buffer.Buffer, n int) (int, error) {
	n, err := f.Peek(dst, n)
	if err != nil {
		return 0, err
	}
	f.Drain(n)
	return n, nil
}

// Peek is like Read but leaves the samples queued.
func (f *FIFO) Peek(dst *buffer.Buffer, n int) (int, error) {
	n = min(max(n, 0), f.size)
	if dst == nil {
		return n, nil
	}
	if err := f.check(dst); err != nil {
		return 0, err
	}
	if dst.ReadOnly() {
		return 0, fmt.Errorf("%w: %s is read-only", buffer.ErrInvalidArgument, dst.Name())
	}
	if dst.Growable() {
		if err := dst.Realloc(n); err != nil {
			return 0, err
		}
	} else {
		n = min(n, dst.Capacity())
	}

	dstPlanes := dst.Planes()
	for p, plane := range f.planes {
		f.load(dstPlanes[p][:n*f.stride], plane, f.readPos)
	}
	if err := dst.SetSamples(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Drain discards up to n samples from the head of the FIFO and returns how
// many were removed.
func (f *FIFO) Drain(n int) int {
	n = min(max(n, 0), f.size)
	f.readPos = (f.readPos + n) & f.mask
	f.size -= n
	if f.size == 0 {
		f.readPos = 0
		f.writePos = 0
	}
	return n
}

// store copies in into the ring plane starting at sample position pos,
// wrapping at the end.
func (f *FIFO) store(plane []byte, pos int, in []byte) {
	start := pos * f.stride
	k := copy(plane[start:], in)
	copy(plane, in[k:])
}

// load fills out from the ring plane starting at sample position pos.
func (f *FIFO) load(out, plane []byte, pos int) {
	start := pos * f.stride
	k := copy(out, plane[start:])
	copy(out[k:], plane)
}

// grow increases the capacity to at least minCapacity samples, unrolling
// the queued data to the start of the new planes.
func (f *FIFO) grow(minCapacity int) {
	newCapacity := f.Capacity()
	for newCapacity < minCapacity {
		newCapacity *= bufferGrowthFactor
	}

	for p, plane := range f.planes {
		data := make([]byte, newCapacity*f.stride)
		f.load(data[:f.size*f.stride], plane, f.readPos)
		f.planes[p] = data
	}
	f.mask = newCapacity - 1
	f.readPos = 0
	f.writePos = f.size
}
