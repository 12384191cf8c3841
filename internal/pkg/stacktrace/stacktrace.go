// Package stacktrace trims raw goroutine stacks down to the frames that belong
// to this module, so panic logs stay readable.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a raw stack trace, innermost first.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ".go:") {
			continue
		}

		// Frame location lines look like "/abs/path/file.go:42 +0x1d".
		loc, _, _ := strings.Cut(line, " ")
		_, rel, found := strings.Cut(loc, marker)
		if !found {
			continue
		}
		paths = append(paths, "internal/"+rel)
	}

	return paths
}
