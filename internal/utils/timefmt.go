package utils

import (
	"time"
)

const (
	headerTimestampLayout   = "2006-01-02 15:04:05"
	fileNameTimestampLayout = "20060102_150405"
)

// FormatTimestamp returns value in the local time zone as "YYYY-MM-DD HH:MM:SS".
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(headerTimestampLayout)
}

// FormatFileNameTimestamp returns value as "YYYYMMDD_HHMMSS", suitable for output file names.
func FormatFileNameTimestamp(value time.Time) string {
	return value.In(time.Local).Format(fileNameTimestampLayout)
}
