// Package xlsx loads the facility catalog from a multi-sheet workbook.
//
// Each sheet is one city. Header rows are normalized (trim + uppercase)
// before column matching, so "  lat " and "LAT" are the same column. Rows
// without a parseable coordinate pair are dropped and counted; a sheet
// that cannot be read contributes zero rows. Only a workbook that cannot
// be opened at all fails the load.
package xlsx

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sparkpark/parking-recommender/internal/domain"
)

// columnAliases maps normalized header names to canonical field keys.
// The sheets were assembled by different people, so several spellings
// exist for most columns.
var columnAliases = map[string]string{
	"NAME":         "name",
	"PARKING NAME": "name",
	"ADDRESS":      "address",
	"LOCATION":     "address",
	"DETAILS":      "details",
	"LINK":         "link",
	"MAPS LINK":    "link",

	"LAT":       "lat",
	"LATITUDE":  "lat",
	"LNG":       "lng",
	"LON":       "lng",
	"LONG":      "lng",
	"LONGITUDE": "lng",

	"OPENING":      "opening",
	"OPENING TIME": "opening",
	"CLOSING":      "closing",
	"CLOSING TIME": "closing",

	"GUARDS":          "guards",
	"GUARD":           "guards",
	"CCTVS":           "cctvs",
	"CCTV":            "cctvs",
	"INITIAL RATE":    "rate",
	"RATE":            "rate",
	"PWD/SC DISCOUNT": "discount",
	"DISCOUNT":        "discount",
	"STREET PARKING":  "street",
}

// Catalog is the load-once, immutable facility collection.
type Catalog struct {
	facilities []domain.Facility
	sheets     int
	dropped    int
}

// Facilities returns the loaded records in workbook order.
func (c *Catalog) Facilities() []domain.Facility { return c.facilities }

// Sheets returns the number of sheets that were read.
func (c *Catalog) Sheets() int { return c.sheets }

// Dropped returns the number of rows discarded for missing coordinates.
func (c *Catalog) Dropped() int { return c.dropped }

// Load reads every sheet of the workbook at path and concatenates the
// normalized rows. Per-sheet read errors are logged and skipped; an error
// is returned only when the workbook itself cannot be opened.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open facility workbook: %w", err)
	}
	defer f.Close()

	catalog := &Catalog{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			logger.Warn("skipping unreadable sheet", "sheet", sheet, "error", err)
			continue
		}
		catalog.sheets++
		catalog.loadSheet(sheet, rows, logger)
	}

	return catalog, nil
}

// loadSheet appends one sheet's rows, tagged with the sheet name as city.
func (c *Catalog) loadSheet(sheet string, rows [][]string, logger *slog.Logger) {
	if len(rows) < 2 {
		logger.Warn("sheet has no data rows", "sheet", sheet)
		return
	}

	columns := mapColumns(rows[0])
	if _, ok := columns["lat"]; !ok {
		logger.Warn("sheet has no latitude column", "sheet", sheet)
		return
	}

	for _, row := range rows[1:] {
		lat, okLat := parseCoordinate(cell(row, columns, "lat"))
		lng, okLng := parseCoordinate(cell(row, columns, "lng"))
		if !okLat || !okLng {
			c.dropped++
			continue
		}

		c.facilities = append(c.facilities, domain.Facility{
			Name:    cell(row, columns, "name"),
			Address: cell(row, columns, "address"),
			Details: cell(row, columns, "details"),
			Link:    cell(row, columns, "link"),
			City:    sheet,

			Lat: lat,
			Lng: lng,

			Opening: cell(row, columns, "opening"),
			Closing: cell(row, columns, "closing"),

			GuardsRaw:   cell(row, columns, "guards"),
			CCTVsRaw:    cell(row, columns, "cctvs"),
			RateRaw:     cell(row, columns, "rate"),
			DiscountRaw: cell(row, columns, "discount"),
			StreetRaw:   cell(row, columns, "street"),
		})
	}
}

// mapColumns resolves a header row to canonical-key -> column-index.
// Unrecognized headers are ignored; the first match per key wins.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, raw := range header {
		key, ok := columnAliases[strings.ToUpper(strings.TrimSpace(raw))]
		if !ok {
			continue
		}
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}

func cell(row []string, columns map[string]int, key string) string {
	i, ok := columns[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCoordinate(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
