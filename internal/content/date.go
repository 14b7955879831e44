package content

import (
	"fmt"
	"strings"
	"time"
)

// TimeAgo renders how long before now t was, in Korean: "방금 전", "5분 전",
// "3시간 전" and so on up to years.
func TimeAgo(t, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	if seconds < 60 {
		return "방금 전"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d분 전", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d시간 전", hours)
	}
	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%d일 전", days)
	}
	if weeks := days / 7; weeks < 4 {
		return fmt.Sprintf("%d주 전", weeks)
	}
	if months := days / 30; months < 12 {
		return fmt.Sprintf("%d개월 전", months)
	}
	return fmt.Sprintf("%d년 전", days/365)
}

// FormatDate renders t as YYYY.MM.DD.
func FormatDate(t time.Time) string {
	return t.Format("2006.01.02")
}

// FormatDateTime renders t as YYYY.MM.DD HH:mm.
func FormatDateTime(t time.Time) string {
	return t.Format("2006.01.02 15:04")
}

// FormatMonth turns a YYYY-MM fixture date into YYYY.MM. Empty reads as "현재".
func FormatMonth(ym string) string {
	if ym == "" {
		return "현재"
	}
	return strings.ReplaceAll(ym, "-", ".")
}

// Period renders an experience's date range, e.g. "2022.03 - 2023.12".
func (e Experience) Period() string {
	return FormatMonth(e.StartDate) + " - " + FormatMonth(e.EndDate)
}
