package backend

import (
	"strings"

	"golang.org/x/sys/cpu"
)

// Available returns a comma-separated list of available backends.
func Available() string {
	return strings.Join([]string{CPU, Serial}, ",")
}

// Features lists the SIMD features of the host CPU, for diagnostics.
func Features() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(cpu.X86.HasSSE41, "sse4.1")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasFMA, "fma")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasFPHP, "fphp")
	add(cpu.ARM64.HasSVE, "sve")
	return out
}
