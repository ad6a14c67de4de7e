package common

import (
	"unsafe"
)

// Provides general helper functions for comparisons and conversions

// AllOfAinB comparison function to ensure a given list is fully contained in another. This is
// mainly used to check for extension and layer support during the initialization process.
func AllOfAinB(a []string, b []string) bool {
	for _, _a := range a {
		isIn := false
		for _, _b := range b {
			if TerminatedStr(_a) == TerminatedStr(_b) {
				isIn = true
				break
			}
		}
		if !isIn {
			return false
		}
	}
	return true
}

// TerminatedStr ensures the given string is \x00 terminated as vulkan expects this in certain structs
func TerminatedStr(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

// TerminatedStrs returns terminated copies, the input slice is left untouched.
func TerminatedStrs(strs []string) []string {
	out := make([]string, len(strs))
	for i := range strs {
		out[i] = TerminatedStr(strs[i])
	}
	return out
}

// AsUint32Arr reinterprets SPIR-V byte code as the []uint32 expected by vk.ShaderModuleCreateInfo. Trailing bytes
// that do not fill a whole word are dropped.
func AsUint32Arr(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
