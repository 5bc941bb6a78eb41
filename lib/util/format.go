package util

import (
	"fmt"
	"math"
)

const (
	sizeB  = 1
	sizeKB = 1024 * sizeB
	sizeMB = 1024 * sizeKB
	sizeGB = 1024 * sizeMB
	sizeTB = 1024 * sizeGB
)

func FormatChange(value float64) string {
	if value > 0 {
		return fmt.Sprintf("+%.2f", value)
	}
	return fmt.Sprintf("%.2f", value)
}

func FormatFloat(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

// CalculatePercentageChange is 0 when there is no usable baseline.
func CalculatePercentageChange(current, previous float64) float64 {
	if previous == 0 || math.IsNaN(current) || math.IsNaN(previous) {
		return 0
	}
	return ((current - previous) / previous) * 100
}

func FormatBytes(bytes float64) string {
	switch {
	case bytes < sizeKB:
		return fmt.Sprintf("%.2fB", bytes)
	case bytes < sizeMB:
		return fmt.Sprintf("%.2fKiB", bytes/sizeKB)
	case bytes < sizeGB:
		return fmt.Sprintf("%.2fMiB", bytes/sizeMB)
	case bytes < sizeTB:
		return fmt.Sprintf("%.2fGiB", bytes/sizeGB)
	default:
		return fmt.Sprintf("%.2fTiB", bytes/sizeTB)
	}
}
