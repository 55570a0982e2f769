package services

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/models"
)

// TableExtractor locates candidate tables in raw page markup, parses each
// into a rectangular grid and selects the most substantive one.
type TableExtractor struct{}

func NewTableExtractor() *TableExtractor {
	return &TableExtractor{}
}

// ExtractCandidates enumerates every table element and parses it into a
// RawTable. Tables that are empty after removing fully-blank rows and
// columns are dropped. A nil slice with nil error means the page has no
// usable tables.
func (e *TableExtractor) ExtractCandidates(rawHTML string) ([]models.RawTable, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page markup: %w", err)
	}

	var candidates []models.RawTable
	document.Find("table").Each(func(tableIndex int, table *goquery.Selection) {
		grid := e.parseGrid(table)
		if grid == nil {
			grid = e.parseGridManually(table)
		}
		if grid == nil {
			return
		}
		cleaned := dropBlankRowsAndColumns(grid)
		if cleaned == nil {
			logrus.WithFields(logrus.Fields{
				"component":   "TableExtractor",
				"table_index": tableIndex,
			}).Debug("Dropped table that is blank after cleanup")
			return
		}
		candidates = append(candidates, *cleaned)
	})

	return candidates, nil
}

// SelectTable picks the candidate with the largest cell count. A winner
// that degenerates to a single cell is treated as no data: the source
// renders an empty placeholder table on off days.
func (e *TableExtractor) SelectTable(candidates []models.RawTable) *models.RawTable {
	var best *models.RawTable
	for i := range candidates {
		if best == nil || candidates[i].CellCount() > best.CellCount() {
			best = &candidates[i]
		}
	}
	if best == nil || best.CellCount() <= 1 {
		return nil
	}
	return best
}

// parseGrid performs the structured parse: every row must yield the same
// cell count. Returns nil when the table is irregular, deferring to the
// manual fallback.
func (e *TableExtractor) parseGrid(table *goquery.Selection) *models.RawTable {
	var rows [][]string
	width := -1
	regular := true

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) == 0 {
			return
		}
		if width == -1 {
			width = len(cells)
		} else if len(cells) != width {
			regular = false
		}
		rows = append(rows, cells)
	})

	if !regular || len(rows) == 0 {
		return nil
	}
	return assembleTable(rows)
}

// parseGridManually tolerates irregular structure: zero-cell rows are
// skipped and short rows padded to the maximum observed width.
func (e *TableExtractor) parseGridManually(table *goquery.Selection) *models.RawTable {
	var rows [][]string
	maxWidth := 0

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) == 0 {
			return
		}
		if len(cells) > maxWidth {
			maxWidth = len(cells)
		}
		rows = append(rows, cells)
	})

	if len(rows) == 0 || maxWidth == 0 {
		return nil
	}
	for i, row := range rows {
		for len(row) < maxWidth {
			row = append(row, "")
		}
		rows[i] = row
	}
	return assembleTable(rows)
}

// assembleTable promotes the first row to header when at least two rows
// exist; otherwise headers stay positional.
func assembleTable(rows [][]string) *models.RawTable {
	if len(rows) >= 2 {
		return &models.RawTable{Headers: rows[0], Rows: rows[1:]}
	}
	headers := make([]string, len(rows[0]))
	for i := range headers {
		headers[i] = fmt.Sprintf("%d", i)
	}
	return &models.RawTable{Headers: headers, Rows: rows}
}

func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, collapseWhitespace(cell.Text()))
	})
	return cells
}

// dropBlankRowsAndColumns removes rows and columns whose every cell is
// empty. Returns nil when nothing remains.
func dropBlankRowsAndColumns(table *models.RawTable) *models.RawTable {
	var rows [][]string
	for _, row := range table.Rows {
		if !rowBlank(row) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	keep := make([]bool, len(table.Headers))
	anyKept := false
	for col := range table.Headers {
		if table.Headers[col] != "" {
			keep[col] = true
		}
		for _, row := range rows {
			if col < len(row) && row[col] != "" {
				keep[col] = true
			}
		}
		if keep[col] {
			anyKept = true
		}
	}
	if !anyKept {
		return nil
	}

	headers := filterColumns(table.Headers, keep)
	filtered := make([][]string, len(rows))
	for i, row := range rows {
		filtered[i] = filterColumns(row, keep)
	}
	return &models.RawTable{Headers: headers, Rows: filtered}
}

func rowBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func filterColumns(row []string, keep []bool) []string {
	out := make([]string, 0, len(row))
	for col, cell := range row {
		if col < len(keep) && keep[col] {
			out = append(out, cell)
		}
	}
	return out
}
