package simd

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// ISA names the widest instruction set detected on this CPU.
type ISA uint8

const (
	Generic ISA = iota
	NEON
	AVX2
	AVX512
)

// OverrideEnv forces an ISA when it names one the CPU supports.
const OverrideEnv = "GRIDDING_SIMD"

var isaNames = [...]string{
	Generic: "generic",
	NEON:    "neon",
	AVX2:    "avx2",
	AVX512:  "avx512",
}

func (i ISA) String() string {
	if int(i) < len(isaNames) {
		return isaNames[i]
	}
	return "unknown"
}

// ParseISA is the inverse of String, ignoring case and surrounding space.
func ParseISA(s string) (ISA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range isaNames {
		if name == s {
			return ISA(i), true
		}
	}
	return Generic, false
}

var (
	activeISA  ISA
	overridden bool
)

func init() {
	activeISA = detect(runtime.GOARCH)
	if env, ok := os.LookupEnv(OverrideEnv); ok {
		if isa, ok := ParseISA(env); ok && supported(isa) {
			activeISA, overridden = isa, true
		}
	}
	selectKernels(activeISA)
}

func detect(arch string) ISA {
	switch arch {
	case "amd64":
		if cpu.X86.HasAVX512F {
			return AVX512
		}
		if cpu.X86.HasAVX2 && cpu.X86.HasFMA {
			return AVX2
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			return NEON
		}
	}
	return Generic
}

// supported reports whether isa is Generic or no wider than what detect
// found on this CPU.
func supported(isa ISA) bool {
	best := detect(runtime.GOARCH)
	switch isa {
	case Generic:
		return true
	case NEON:
		return best == NEON
	case AVX2:
		return best == AVX2 || best == AVX512
	case AVX512:
		return best == AVX512
	}
	return false
}

// ActiveISA returns the detected ISA, or the one GRIDDING_SIMD forced.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden reports whether GRIDDING_SIMD picked the active ISA.
func IsOverridden() bool {
	return overridden
}
