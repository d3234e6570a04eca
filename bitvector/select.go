package bitvector

const (
	m1 = 0x5555555555555555
	m2 = 0x3333333333333333
	m4 = 0x0f0f0f0f0f0f0f0f
	m8 = 0x00ff00ff00ff00ff
)

// selectInWord returns the position of the (r+1)-th set bit of w.
// r must be smaller than the popcount of w.
// Platform init code may replace it with a hardware kernel.
var selectInWord = selectBroadword

// HasHardwareSelect reports whether in-word select runs on a hardware kernel.
func HasHardwareSelect() bool {
	return hardwareSelect
}

var hardwareSelect bool

// selectBroadword locates the bit with nested pairwise popcounts,
// descending through 32, 16, 8, 4, 2 and 1 bit halves.
func selectBroadword(w uint64, r uint64) uint64 {
	c1 := w
	c2 := c1 - ((c1 >> 1) & m1)
	c4 := ((c2 >> 2) & m2) + (c2 & m2)
	c8 := ((c4 >> 4) + c4) & m4
	c16 := ((c8 >> 8) + c8) & m8
	c32 := (c16 >> 16) + c16

	p := uint64(0)
	t := c32 & 0x3f
	if r >= t {
		p += 32
		r -= t
	}
	t = (c16 >> p) & 0x1f
	if r >= t {
		p += 16
		r -= t
	}
	t = (c8 >> p) & 0x0f
	if r >= t {
		p += 8
		r -= t
	}
	t = (c4 >> p) & 0x07
	if r >= t {
		p += 4
		r -= t
	}
	t = (c2 >> p) & 0x03
	if r >= t {
		p += 2
		r -= t
	}
	t = (c1 >> p) & 0x01
	if r >= t {
		p++
	}
	return p
}
