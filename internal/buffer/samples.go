package buffer

import "unsafe"

// Sample is the set of element types a plane can hold.
type Sample interface {
	~uint8 | ~int16 | ~int32 | ~float32 | ~float64
}

// View reinterprets a plane as a slice of T covering every whole element.
// Planes are always aligned to their sample size (NewView checks it and
// owned planes come from the allocator).
func View[T Sample](plane []byte) []T {
	var zero T
	n := len(plane) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(plane))), n)
}

// Bytes reinterprets a typed slice as its backing bytes.
func Bytes[T Sample](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// FillSilence writes the zero level of format into plane.
func FillSilence(plane []byte, format SampleFormat) {
	if format.Packed() == FormatU8 {
		for i := range plane {
			plane[i] = u8Silence
		}
		return
	}
	clear(plane)
}

// Uint8s returns plane p as unsigned 8-bit samples.
func (b *Buffer) Uint8s(p int) []uint8 { return View[uint8](b.planes[p]) }

// Int16s returns plane p as signed 16-bit samples.
func (b *Buffer) Int16s(p int) []int16 { return View[int16](b.planes[p]) }

// Int32s returns plane p as signed 32-bit samples.
func (b *Buffer) Int32s(p int) []int32 { return View[int32](b.planes[p]) }

// Float32s returns plane p as float32 samples.
func (b *Buffer) Float32s(p int) []float32 { return View[float32](b.planes[p]) }

// Float64s returns plane p as float64 samples.
func (b *Buffer) Float64s(p int) []float64 { return View[float64](b.planes[p]) }
