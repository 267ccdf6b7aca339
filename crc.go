package gma

import "hash/crc32"

// Checksum returns the CRC-32 of b using the IEEE 802.3 polynomial.
//
// This is the checksum used for both per-file and whole-archive integrity
// fields. Archives produced by other tools compute the same function, so the
// polynomial is not configurable.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
