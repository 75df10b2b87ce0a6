package pow

// leading zero bits of each nibble value
var nibbleLeadingZeros = [16]int{4, 3, 2, 2, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0}

// CountLeadingZeroBits returns the number of leading zero bits of a hex encoded
// hash. Counting stops at the first nonzero nibble, or at the first byte that is
// not a hex digit.
func CountLeadingZeroBits(hex string) int {
	count := 0
	for i := 0; i < len(hex); i++ {
		n, ok := nibble(hex[i])
		if !ok {
			return count
		}
		count += nibbleLeadingZeros[n]
		if n != 0 {
			return count
		}
	}
	return count
}

// Difficulty is the NIP-13 difficulty of an event id.
func Difficulty(id string) int {
	return CountLeadingZeroBits(id)
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
