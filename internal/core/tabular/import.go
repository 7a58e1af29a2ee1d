package tabular

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultTime is used for rows without a time column or value.
const DefaultTime = "19:30"

// Field is a logical import column.
type Field int

const (
	FieldDate Field = iota
	FieldTime
	FieldSite
	FieldPresenter
	FieldAdults
	FieldKids
	FieldVisitors
	FieldTeens
	FieldVolunteers
	FieldNotes
)

// aliases maps folded header text to the field it names.
var aliases = map[string]Field{
	"data":             FieldDate,
	"date":             FieldDate,
	"horario":          FieldTime,
	"hora":             FieldTime,
	"time":             FieldTime,
	"campus":           FieldSite,
	"site":             FieldSite,
	"preletor":         FieldPresenter,
	"presenter":        FieldPresenter,
	"adultos":          FieldAdults,
	"adults":           FieldAdults,
	"criancas":         FieldKids,
	"kids":             FieldKids,
	"visitantes":       FieldVisitors,
	"visitors":         FieldVisitors,
	"pre-adolescentes": FieldTeens,
	"pre adolescentes": FieldTeens,
	"teens":            FieldTeens,
	"voluntarios":      FieldVolunteers,
	"volunteers":       FieldVolunteers,
	"observacoes":      FieldNotes,
	"notes":            FieldNotes,
}

// Fold lowercases s, trims it and strips diacritics, so "Horário" and
// "horario" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Row is one data row mapped onto logical fields.
type Row struct {
	Line       int // 1-based line in the source, header included
	Date       string
	Time       string
	Site       string
	Presenter  string
	Adults     int
	Kids       int
	Visitors   int
	Teens      int
	Volunteers int
	Notes      string
}

// ParseRows maps rows (header first) onto logical fields. Rows without a
// date or a site are dropped and counted in skipped; blank rows are ignored.
func ParseRows(rows [][]string) (parsed []Row, skipped int) {
	if len(rows) == 0 {
		return nil, 0
	}

	columns := make(map[Field]int)
	for i, h := range rows[0] {
		if f, ok := aliases[Fold(h)]; ok {
			if _, seen := columns[f]; !seen {
				columns[f] = i
			}
		}
	}

	for n, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		get := func(f Field) string {
			i, ok := columns[f]
			if !ok || i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}

		row := Row{
			Line:       n + 2,
			Date:       NormalizeDate(get(FieldDate)),
			Time:       NormalizeTime(get(FieldTime)),
			Site:       get(FieldSite),
			Presenter:  get(FieldPresenter),
			Adults:     count(get(FieldAdults)),
			Kids:       count(get(FieldKids)),
			Visitors:   count(get(FieldVisitors)),
			Teens:      count(get(FieldTeens)),
			Volunteers: count(get(FieldVolunteers)),
			Notes:      get(FieldNotes),
		}
		if row.Date == "" || row.Site == "" {
			skipped++
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed, skipped
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// count parses a head count; anything unparsable or negative counts as zero.
func count(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NormalizeDate accepts YYYY-MM-DD, DD/MM/YYYY and spreadsheet date serials
// and returns YYYY-MM-DD. Other input is returned unchanged for validation to
// reject.
func NormalizeDate(s string) string {
	// Serials outside this window are more likely plain numbers than dates.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 20000 && serial <= 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("2006-01-02")
		}
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return s
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return s
	}
	return fmt.Sprintf("%s-%02d-%02d", parts[2], month, day)
}

// NormalizeTime pads H:MM to HH:MM and drops seconds. Empty input yields
// DefaultTime.
func NormalizeTime(s string) string {
	if s == "" {
		return DefaultTime
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// PartialImportError reports that some rows were dropped while the rest of
// the batch was imported.
type PartialImportError struct {
	Imported int
	Skipped  int
}

func (e *PartialImportError) Error() string {
	return fmt.Sprintf("imported %d rows, skipped %d", e.Imported, e.Skipped)
}
