package vmax

// Morton (Z-order) codec for the two nesting levels of the V-format:
// chunk IDs interleave 3 bits per axis (8x8x8 chunks), intra-chunk offsets
// interleave 5 bits per axis (32x32x32 voxels). Bit i of x lands at bit 3i,
// y at 3i+1, z at 3i+2.

func expandBits(n uint32) uint32 {
	n &= 0x000003ff
	n = (n | (n << 16)) & 0x030000ff
	n = (n | (n << 8)) & 0x0300f00f
	n = (n | (n << 4)) & 0x030c30c3
	n = (n | (n << 2)) & 0x09249249
	return n
}

func compactBits(n uint32) uint32 {
	n &= 0x49249249 // keep every 3rd bit
	n = (n ^ (n >> 2)) & 0xc30c30c3
	n = (n ^ (n >> 4)) & 0x0f00f00f
	n = (n ^ (n >> 8)) & 0x00ff00ff
	n = (n ^ (n >> 16)) & 0x0000ffff
	return n
}

// EncodeMorton3 interleaves the low bits of x, y, z into a single code.
// Exact for inputs up to 10 bits per axis.
func EncodeMorton3(x, y, z uint32) uint32 {
	return expandBits(x) | expandBits(y)<<1 | expandBits(z)<<2
}

// DecodeMorton3 is the inverse of EncodeMorton3 for axis values up to
// 8 bits, far beyond the 5-bit voxel range used here.
func DecodeMorton3(m uint32) (x, y, z uint32) {
	return compactBits(m), compactBits(m >> 1), compactBits(m >> 2)
}
