// Package format holds the display helpers shared by the API and the client SDK:
// rupiah prices, Indonesian dates, relative times and URL slugs.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugStripRegex = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRegex     = regexp.MustCompile(`\s+`)
	dashRegex      = regexp.MustCompile(`-+`)

	indonesiaSuffix = regexp.MustCompile(`(?i),\s*Indonesia`)
	idSuffix        = regexp.MustCompile(`(?i)\s*,\s*ID$`)
	trailingComma   = regexp.MustCompile(`\s*,\s*$`)
)

var monthsID = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatPrice renders an IDR amount, e.g. 1500000 -> "Rp 1.500.000".
func FormatPrice(amount int64) string {
	if amount < 0 {
		return "-Rp " + groupThousands(-amount)
	}
	return "Rp " + groupThousands(amount)
}

// FormatNumber groups digits with the Indonesian thousands separator.
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	return groupThousands(n)
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDate renders a long Indonesian date ("2 Januari 2025"). Zero time gives "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthsID[t.Month()-1], t.Year())
}

// FormatRelativeTime describes how long ago t was relative to now.
// Months are 30 days and years 12 months.
func FormatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	seconds := int64(now.Sub(t).Seconds())
	if seconds < 60 {
		return "Baru saja"
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d menit yang lalu", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d jam yang lalu", hours)
	}

	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d hari yang lalu", days)
	}

	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%d bulan yang lalu", months)
	}

	return fmt.Sprintf("%d tahun yang lalu", months/12)
}

// TruncateText cuts text to length runes and appends suffix. length <= 0 means 100.
func TruncateText(text string, length int, suffix string) string {
	if length <= 0 {
		length = 100
	}
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return strings.TrimSpace(string(runes[:length])) + suffix
}

// NormalizeCompanyName turns a company name into its URL slug ("Acme, Inc." -> "acme-inc").
func NormalizeCompanyName(name string) string {
	return slugify(name)
}

// NormalizeJobTitle turns a job title into its URL slug.
func NormalizeJobTitle(title string) string {
	return slugify(title)
}

func slugify(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = slugStripRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = spaceRegex.ReplaceAllString(s, "-")
	s = dashRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CleanLocation strips the country suffix from a location label.
// Remote jobs always read "Remote".
func CleanLocation(location string, remote bool) string {
	if remote {
		return "Remote"
	}
	if location == "" {
		return ""
	}
	location = indonesiaSuffix.ReplaceAllString(location, "")
	location = idSuffix.ReplaceAllString(location, "")
	location = trailingComma.ReplaceAllString(location, "")
	return strings.TrimSpace(location)
}

var durationUnits = map[string]string{
	"month": "bulan",
	"week":  "minggu",
	"day":   "hari",
	"hour":  "jam",
}

// FormatDuration renders "3 bulan" style durations. Values that already carry
// a unit ("6 weeks") pass through untouched.
func FormatDuration(duration, unit string) string {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return ""
	}
	num, err := strconv.Atoi(duration)
	if err != nil {
		return duration
	}
	if mapped, ok := durationUnits[unit]; ok {
		unit = mapped
	}
	return strings.TrimSpace(fmt.Sprintf("%d %s", num, unit))
}
