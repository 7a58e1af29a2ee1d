package aggregate

import (
	"strconv"
	"strings"
)

// FormatDisplayDate turns "2024-05-08" into "08/05".
func FormatDisplayDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1]
}

// FormatLongDate turns "2024-05-08" into "08/05/2024".
func FormatLongDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return "invalid date"
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// ServicePeriod labels a service by the time of day it started.
type ServicePeriod string

const (
	ServiceMorning ServicePeriod = "morning"
	ServiceEvening ServicePeriod = "evening"
)

// ServiceLabel classifies "HH:MM": hours before noon are morning services,
// everything else is an evening service.
func ServiceLabel(hhmm string) ServicePeriod {
	hours, _, _ := strings.Cut(hhmm, ":")
	h, err := strconv.Atoi(hours)
	if err == nil && h < 12 {
		return ServiceMorning
	}
	return ServiceEvening
}
