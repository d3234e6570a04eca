//go:build amd64 && !noasm

package bitvector

import "golang.org/x/sys/cpu"

func init() {
	if cpu.X86.HasBMI1 && cpu.X86.HasBMI2 {
		selectInWord = selectPdep
		hardwareSelect = true
	}
}

// selectPdep deposits 1<<r into the set bits of w and
// counts the trailing zeros of the result.
func selectPdep(w uint64, r uint64) uint64
