package filemanager

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatDate renders t with a PHP date() layout, the notation the file
// manager configuration uses for options.dateFormat. A backslash escapes
// the next character.
func formatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = "d M Y H:i"
	}

	runes := []rune(layout)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' && i+1 < len(runes) {
			i++
			b.WriteRune(runes[i])
			continue
		}
		b.WriteString(dateToken(t, c))
	}
	return b.String()
}

func dateToken(t time.Time, c rune) string {
	switch c {
	// Day
	case 'd':
		return pad2(t.Day())
	case 'D':
		return t.Weekday().String()[:3]
	case 'j':
		return strconv.Itoa(t.Day())
	case 'l':
		return t.Weekday().String()
	case 'N':
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd)
	case 'S':
		return ordinalSuffix(t.Day())
	case 'w':
		return strconv.Itoa(int(t.Weekday()))
	case 'z':
		return strconv.Itoa(t.YearDay() - 1)

	// Month
	case 'F':
		return t.Month().String()
	case 'M':
		return t.Month().String()[:3]
	case 'm':
		return pad2(int(t.Month()))
	case 'n':
		return strconv.Itoa(int(t.Month()))
	case 't':
		return strconv.Itoa(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day())

	// Year
	case 'L':
		if isLeap(t.Year()) {
			return "1"
		}
		return "0"
	case 'Y':
		return strconv.Itoa(t.Year())
	case 'y':
		return pad2(t.Year() % 100)

	// Time
	case 'a':
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	case 'A':
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case 'g':
		return strconv.Itoa(hour12(t))
	case 'G':
		return strconv.Itoa(t.Hour())
	case 'h':
		return pad2(hour12(t))
	case 'H':
		return pad2(t.Hour())
	case 'i':
		return pad2(t.Minute())
	case 's':
		return pad2(t.Second())
	case 'u':
		return fmt.Sprintf("%06d", t.Nanosecond()/1000)
	case 'v':
		return fmt.Sprintf("%03d", t.Nanosecond()/1000000)

	// Timezone
	case 'e':
		return t.Location().String()
	case 'T':
		return t.Format("MST")
	case 'O':
		return t.Format("-0700")
	case 'P':
		return t.Format("-07:00")
	case 'Z':
		_, offset := t.Zone()
		return strconv.Itoa(offset)

	// Full date/time
	case 'c':
		return t.Format("2006-01-02T15:04:05-07:00")
	case 'r':
		return t.Format("Mon, 02 Jan 2006 15:04:05 -0700")
	case 'U':
		return strconv.FormatInt(t.Unix(), 10)
	}
	return string(c)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
