// Package drift notices when a profile page is served with a different
// markup layout than the profiles before it. Selectors and line offsets are
// tuned to one layout; a page from another cohort extracts to empty fields
// without any error, so the structure itself is compared.
package drift

import (
	"hash/fnv"
	"math/bits"
)

// Fingerprint computes a 64-bit SimHash over tokens.
func Fingerprint(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()

		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance is the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
