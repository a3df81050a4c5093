package router

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
)

// Bounds of the digest sum used by SelectReplicaSlot.
const (
	MinDigestSum = 32 * 30
	MaxDigestSum = 32 * 66
)

// SelectReplicaSlot maps a random draw to a secondary slot in [0, n).
//
// With a single slot no hashing is done. Otherwise the draw is rendered as a
// decimal string and hashed with MD5. For every character of the hex digest the
// two hex digits of its byte value are read as a decimal number and summed
// (digits '0'-'9' contribute 30-39, 'a'-'f' contribute 61-66); the sum is
// reduced modulo n. The result only depends on draw and n.
//
// This spreads reads without a shared round robin counter. It is not a
// uniform hash: each of the 32 digest characters adds 30-66, so the sum always
// lies in [MinDigestSum, MaxDigestSum] = [960, 2112]. The spread is close to
// even for small n (a few dozen slots). For n > 1153 the indices in
// (2112-n, 960) can never be selected, and well before that bound the indices
// far from the middle of the sum range become rare.
//
// n must be positive.
func SelectReplicaSlot(draw int64, n int) int {
	if n <= 1 {
		return 0
	}

	digest := md5.Sum([]byte(strconv.FormatInt(draw, 10)))
	hexDigest := hex.EncodeToString(digest[:])

	sum := 0
	for i := 0; i < len(hexDigest); i++ {
		sum += hexByteAsDecimal(hexDigest[i])
	}
	return sum % n
}

// hexByteAsDecimal returns the two hex digits of b read as a decimal number.
// For the characters of a lowercase hex digest both digits are always 0-9.
func hexByteAsDecimal(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}
