package buffer

import "fmt"

// Copy copies all samples of src into dst, optionally remapping channels.
//
// Both buffers must share a format and dst must have at least as many
// channels as src. A channel map requires a planar source. An empty source
// empties dst.
func Copy(dst, src *Buffer, m *ChannelMap) error {
	if dst.format != src.format || dst.channels < src.channels || dst.stride != src.stride {
		return fmt.Errorf("%w: cannot copy %s (%v, %d ch) into %s (%v, %d ch)",
			ErrInvalidArgument, src.name, src.format, src.channels, dst.name, dst.format, dst.channels)
	}
	if m != nil && !src.planar {
		return fmt.Errorf("%w: cannot remap packed %s during copy", ErrInvalidArgument, src.name)
	}
	if src.samples == 0 {
		dst.samples = 0
		return nil
	}
	if dst.readOnly {
		return fmt.Errorf("%w: %s is read-only", ErrInvalidArgument, dst.name)
	}
	if err := dst.Realloc(src.samples); err != nil {
		return err
	}

	size := src.samples * src.stride
	srcPlanes := src.Planes()
	dstPlanes := dst.planes

	if m == nil {
		for p, plane := range srcPlanes {
			copy(dstPlanes[p][:size], plane[:size])
		}
	} else {
		if m.DoRemap {
			for p := range srcPlanes {
				if d := m.Directives[p]; d.Op == OpRemap {
					copy(dstPlanes[p][:size], srcPlanes[d.Index][:size])
				}
			}
		}
		m.ApplyCopies(dstPlanes[:len(srcPlanes)], src.samples, src.stride, dst.format)
	}

	dst.samples = src.samples
	return nil
}

// Combine inserts n samples of src, starting at srcOffset, into dst at
// dstOffset. Samples already in dst at or after dstOffset are shifted right
// to make room. n is clamped to what src holds past srcOffset.
func Combine(dst *Buffer, dstOffset int, src *Buffer, srcOffset, n int) error {
	if dst.format != src.format || dst.channels != src.channels {
		return fmt.Errorf("%w: cannot combine %s (%v, %d ch) into %s (%v, %d ch)",
			ErrInvalidArgument, src.name, src.format, src.channels, dst.name, dst.format, dst.channels)
	}
	if dstOffset < 0 || dstOffset > dst.samples || srcOffset < 0 || srcOffset > src.samples {
		return fmt.Errorf("%w: offset out of bounds: src=%d dst=%d", ErrInvalidArgument, srcOffset, dstOffset)
	}

	n = min(n, src.samples-srcOffset)
	if n <= 0 {
		return nil
	}
	if dst.readOnly {
		return fmt.Errorf("%w: %s is read-only", ErrInvalidArgument, dst.name)
	}
	if err := dst.Realloc(dst.samples + n); err != nil {
		return err
	}

	stride := dst.stride
	moveSize := (dst.samples - dstOffset) * stride
	srcPlanes := src.Planes()
	for p, plane := range dst.Planes() {
		if moveSize > 0 {
			start := dstOffset * stride
			copy(plane[start+n*stride:], plane[start:start+moveSize])
		}
		copy(plane[dstOffset*stride:(dstOffset+n)*stride], srcPlanes[p][srcOffset*stride:(srcOffset+n)*stride])
	}
	dst.samples += n
	return nil
}
