package core

import "fmt"

// The Vulkan C API expects null terminated strings; the Go side of the
// binding does not add the terminator for us.

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, fmt.Sprintf("%s\x00", s))
	}
	return safe
}
