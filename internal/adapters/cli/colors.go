package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// siteColors maps the stored site color classes onto terminal colors.
var siteColors = map[string]color.Attribute{
	"bg-neo-yellow": color.FgYellow,
	"bg-neo-purple": color.FgMagenta,
	"bg-neo-cyan":   color.FgCyan,
	"bg-neo-pink":   color.FgHiRed,
	"bg-neo-green":  color.FgGreen,
	"bg-neo-blue":   color.FgBlue,
}

// siteLabel renders a site name in its accent color.
func siteLabel(site attendance.Site) string {
	if attr, ok := siteColors[site.Color]; ok {
		return color.New(attr, color.Bold).Sprint(site.Name)
	}
	return site.Name
}

// growthLabel renders a growth percentage, green when not negative.
func growthLabel(percent int) string {
	if percent < 0 {
		return color.New(color.FgRed).Sprintf("▼ %d%%", percent)
	}
	return color.New(color.FgGreen).Sprintf("▲ +%d%%", percent)
}

func dim(format string, args ...interface{}) string {
	return color.New(color.Faint).Sprint(fmt.Sprintf(format, args...))
}
