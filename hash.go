// SPDX-License-Identifier: MIT

package lz4

import "encoding/binary"

// hash4 hashes the 4 bytes at b[i:] into a table index with the given log
// width (§4.1: (v * 2654435761) >> (32 - log)).
func hash4(b []byte, i int, log uint) uint32 {
	v := binary.LittleEndian.Uint32(b[i:])
	return (v * 2654435761) >> (32 - log)
}
