package utils

import "fmt"

// FormatTimeDuration 将秒数格式化为易读的时长
func FormatTimeDuration(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatFileSize 将字节大小格式化为人类可读格式
func FormatFileSize(sizeBytes int64) string {
	const (
		kb int64 = 1024
		mb       = 1024 * kb
		gb       = 1024 * mb
	)

	switch {
	case sizeBytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(sizeBytes)/float64(gb))
	case sizeBytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(sizeBytes)/float64(mb))
	case sizeBytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(sizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", sizeBytes)
	}
}
