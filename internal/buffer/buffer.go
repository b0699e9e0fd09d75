// Package buffer implements the multichannel sample storage shared by every
// conversion stage: planar or packed planes in one of ten sample formats,
// either viewing caller memory or owning a growable allocation.
package buffer

import (
	"fmt"
	"math"
	"unsafe"
)

// Buffer holds N samples across C channels in one sample format.
//
// Planar buffers keep one plane per channel; packed buffers keep a single
// interleaved plane. A single-channel buffer is treated as planar regardless
// of its format. Samples are stored in host byte order.
//
// A Buffer is either a view over caller-owned planes (never reallocated) or
// an owned allocation that grows on demand.
type Buffer struct {
	name   string
	format SampleFormat
	planar bool

	channels      int // active channels
	allocChannels int // channels with storage
	planes        [][]byte

	samples    int // samples in use
	capacity   int // samples the planes can hold
	sampleSize int // bytes per sample of one channel
	stride     int // bytes per sample frame within a plane

	ptrAlign     int
	samplesAlign int

	readOnly     bool
	allowRealloc bool
}

// NewView wraps caller-owned planes without copying.
//
// Planar formats need one plane per channel; packed formats need one plane.
// Each plane must hold at least samples frames and be aligned to the sample
// size. The view's capacity equals samples and it can never be reallocated.
func NewView(name string, planes [][]byte, channels, samples int, format SampleFormat, readOnly bool) (*Buffer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s: invalid sample format %v", ErrInvalidArgument, name, format)
	}
	if channels < minChannels || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %s: channel count %d out of range [%d, %d]",
			ErrInvalidArgument, name, channels, minChannels, MaxChannels)
	}
	if samples < 0 {
		return nil, fmt.Errorf("%w: %s: negative sample count %d", ErrInvalidArgument, name, samples)
	}

	b := &Buffer{
		name:          name,
		format:        format,
		planar:        format.IsPlanarFor(channels),
		channels:      channels,
		allocChannels: channels,
		sampleSize:    format.BytesPerSample(),
		samples:       samples,
		capacity:      samples,
		readOnly:      readOnly,
	}
	b.stride = b.frameStride(channels)

	numPlanes := b.planeCount()
	if len(planes) < numPlanes {
		return nil, fmt.Errorf("%w: %s: need %d planes, got %d", ErrInvalidArgument, name, numPlanes, len(planes))
	}

	need := samples * b.stride
	b.planes = make([][]byte, numPlanes)
	for p := range numPlanes {
		plane := planes[p]
		if plane == nil {
			return nil, fmt.Errorf("%w: %s: plane %d is nil", ErrInvalidArgument, name, p)
		}
		if len(plane) < need {
			return nil, fmt.Errorf("%w: %s: plane %d holds %d bytes, need %d",
				ErrInvalidArgument, name, p, len(plane), need)
		}
		if len(plane) > 0 && addr(plane)%uintptr(b.sampleSize) != 0 {
			return nil, fmt.Errorf("%w: %s: plane %d is not aligned to %d bytes",
				ErrInvalidArgument, name, p, b.sampleSize)
		}
		b.planes[p] = plane[:need:need]
	}

	b.calcAlignment()
	return b, nil
}

// New allocates an owned buffer for the given channels and capacity.
// The sample count starts at zero.
func New(name string, channels, capacity int, format SampleFormat) (*Buffer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s: invalid sample format %v", ErrInvalidArgument, name, format)
	}
	if channels < minChannels || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %s: channel count %d out of range [%d, %d]",
			ErrInvalidArgument, name, channels, minChannels, MaxChannels)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %s: negative capacity %d", ErrInvalidArgument, name, capacity)
	}

	b := &Buffer{
		name:          name,
		format:        format,
		planar:        format.IsPlanarFor(channels),
		channels:      channels,
		allocChannels: channels,
		sampleSize:    format.BytesPerSample(),
		allowRealloc:  true,
	}
	b.stride = b.frameStride(channels)
	b.planes = make([][]byte, b.allocPlaneCount())

	if capacity > 0 {
		if err := b.Realloc(capacity); err != nil {
			return nil, err
		}
	} else {
		b.calcAlignment()
	}
	return b, nil
}

// Realloc ensures the buffer can hold at least n samples, preserving the
// samples already in use. It is a no-op when the capacity already suffices
// and fails for read-only buffers and views.
func (b *Buffer) Realloc(n int) error {
	if b.capacity >= n {
		return nil
	}
	if b.readOnly || !b.allowRealloc {
		return fmt.Errorf("%w: %s: cannot reallocate (read-only=%v)", ErrInvalidArgument, b.name, b.readOnly)
	}

	newCap := max(n, b.capacity*allocGrowFactor)
	newCap = (newCap + allocBlock - 1) / allocBlock * allocBlock

	allocStride := b.frameStride(b.allocChannels)
	if newCap > math.MaxInt32/allocStride {
		return fmt.Errorf("%w: %s: %d samples exceeds the plane size limit", ErrResourceExhaustion, b.name, n)
	}

	size := newCap * allocStride
	for p := range b.planes {
		plane := make([]byte, size)
		copy(plane, b.planes[p][:b.samples*b.stride])
		b.planes[p] = plane
	}
	b.capacity = newCap
	b.calcAlignment()
	return nil
}

// SetChannels changes the active channel count without reallocating. It is
// used to reinterpret a buffer after mixing changes the channel count.
func (b *Buffer) SetChannels(n int) error {
	if n < minChannels || n > MaxChannels || n > b.allocChannels {
		return fmt.Errorf("%w: %s: cannot use %d channels (allocated %d)",
			ErrInvalidArgument, b.name, n, b.allocChannels)
	}
	if !b.planar && b.samples > 0 && n != b.channels {
		return fmt.Errorf("%w: %s: cannot reshape a non-empty packed buffer", ErrInvalidArgument, b.name)
	}
	b.channels = n
	if !b.planar {
		b.stride = b.frameStride(n)
		b.capacity = len(b.planes[0]) / b.stride
	}
	b.calcAlignment()
	return nil
}

// Release drops the buffer's storage. Owned planes become garbage; views
// stop referencing caller memory.
func (b *Buffer) Release() {
	b.planes = nil
	b.samples = 0
	b.capacity = 0
	b.allowRealloc = false
}

// Drain removes n samples from the front, shifting the remainder left.
func (b *Buffer) Drain(n int) {
	if n <= 0 {
		return
	}
	if b.samples <= n {
		b.samples = 0
		return
	}
	offset := n * b.stride
	size := (b.samples - n) * b.stride
	for _, plane := range b.Planes() {
		copy(plane, plane[offset:offset+size])
	}
	b.samples -= n
}

// SetSilence fills n samples starting at offset with the format's zero level.
func (b *Buffer) SetSilence(offset, n int) error {
	if offset < 0 || n < 0 || offset+n > b.capacity {
		return fmt.Errorf("%w: %s: silence range [%d, %d) outside capacity %d",
			ErrInvalidArgument, b.name, offset, offset+n, b.capacity)
	}
	for _, plane := range b.Planes() {
		FillSilence(plane[offset*b.stride:(offset+n)*b.stride], b.format)
	}
	return nil
}

// SetSamples sets the number of samples in use after a stage has written
// directly into the planes.
func (b *Buffer) SetSamples(n int) error {
	if n < 0 || n > b.capacity {
		return fmt.Errorf("%w: %s: sample count %d outside capacity %d", ErrInvalidArgument, b.name, n, b.capacity)
	}
	b.samples = n
	return nil
}

// Name returns the label used in error messages.
func (b *Buffer) Name() string { return b.name }

// Format returns the sample format.
func (b *Buffer) Format() SampleFormat { return b.format }

// Channels returns the active channel count.
func (b *Buffer) Channels() int { return b.channels }

// AllocatedChannels returns the number of channels with storage.
func (b *Buffer) AllocatedChannels() int { return b.allocChannels }

// Samples returns the number of samples in use.
func (b *Buffer) Samples() int { return b.samples }

// Capacity returns the number of samples the planes can hold.
func (b *Buffer) Capacity() int { return b.capacity }

// Stride returns the byte distance between consecutive samples in a plane.
func (b *Buffer) Stride() int { return b.stride }

// SampleSize returns the size of one sample of one channel.
func (b *Buffer) SampleSize() int { return b.sampleSize }

// IsPlanar reports whether each channel has its own plane.
func (b *Buffer) IsPlanar() bool { return b.planar }

// ReadOnly reports whether the buffer may be written.
func (b *Buffer) ReadOnly() bool { return b.readOnly }

// Growable reports whether Realloc may enlarge the buffer.
func (b *Buffer) Growable() bool { return !b.readOnly && b.allowRealloc }

// PtrAlign returns the largest power of two (up to 64) dividing every
// active plane address.
func (b *Buffer) PtrAlign() int { return b.ptrAlign }

// SamplesAlign returns the number of samples a kernel may touch in every
// plane, which is at least the capacity.
func (b *Buffer) SamplesAlign() int { return b.samplesAlign }

// Planes returns the active planes, each spanning the full capacity.
func (b *Buffer) Planes() [][]byte {
	return b.planes[:b.planeCount()]
}

// Plane returns plane p spanning the full capacity.
func (b *Buffer) Plane(p int) []byte {
	return b.planes[p]
}

func (b *Buffer) planeCount() int {
	if b.planar {
		return b.channels
	}
	return 1
}

func (b *Buffer) allocPlaneCount() int {
	if b.planar {
		return b.allocChannels
	}
	return 1
}

func (b *Buffer) frameStride(channels int) int {
	if b.planar {
		return b.sampleSize
	}
	return b.sampleSize * channels
}

// calcAlignment recomputes the pointer and sample alignment hints.
func (b *Buffer) calcAlignment() {
	align := maxPtrAlign
	for _, plane := range b.Planes() {
		if len(plane) == 0 {
			continue
		}
		a := addr(plane)
		cur := maxPtrAlign
		for a%uintptr(cur) != 0 {
			cur >>= 1
		}
		align = min(align, cur)
	}
	b.ptrAlign = align
	b.samplesAlign = b.capacity
}

func addr(p []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(p)))
}
