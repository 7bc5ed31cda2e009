package scoring

import (
	"fmt"
	"time"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDateFR renders t as "02 janvier 2006".
func FormatDateFR(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}
