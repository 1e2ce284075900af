package simd

import (
	"github.com/klauspost/cpuid/v2"
)

// CPUFeatures contains detected CPU SIMD capabilities
type CPUFeatures struct {
	Vendor    string
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool
}

// Global CPU detection state
var (
	features    CPUFeatures
	vectorBytes int
)

func init() {
	detectCPU()
}

// detectCPU detects CPU capabilities and derives the widest vector register
// width the hardware offers.
func detectCPU() {
	// Use more comprehensive AVX512 detection
	hasAVX512 := cpuid.CPU.Supports(cpuid.AVX512F) &&
		cpuid.CPU.Supports(cpuid.AVX512DQ) &&
		cpuid.CPU.Supports(cpuid.AVX512BW) &&
		cpuid.CPU.Supports(cpuid.AVX512VL)

	features = CPUFeatures{
		Vendor:    cpuid.CPU.VendorString,
		HasAVX2:   cpuid.CPU.Supports(cpuid.AVX2),
		HasAVX512: hasAVX512,
		HasNEON:   cpuid.CPU.Supports(cpuid.ASIMD), // ARM NEON
	}

	switch {
	case features.HasAVX512:
		vectorBytes = 64 // ZMM registers
	case features.HasAVX2:
		vectorBytes = 32 // YMM registers
	case features.HasNEON:
		vectorBytes = 16
	default:
		vectorBytes = 16 // SSE baseline
	}
}

// GetCPUFeatures returns the detected CPU capabilities
func GetCPUFeatures() CPUFeatures {
	return features
}

// VectorWidthBytes returns the width in bytes of the widest vector register
// detected on this machine. Aligned blocks must start on a multiple of this
// width for vector loads on them to be safe.
func VectorWidthBytes() int {
	return vectorBytes
}
