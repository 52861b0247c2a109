// Package utils holds small helpers shared by handlers, middleware and services
package utils

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a photo size for the Past Photos table, e.g. "1.5 MB".
// GB is the largest unit.
func FormatFileSize(size int64) string {
	if size < 0 {
		size = 0
	}
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}
