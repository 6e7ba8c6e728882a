package utils

import (
	"strings"

	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/dustin/go-humanize"
)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSize renders a byte count using binary units.
func FormatSize(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
