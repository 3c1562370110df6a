package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"

	"stockdiff/internal"
	"stockdiff/internal/util"
)

var errNoHeader = errors.New("no header row")

// LoadTable reads a whole file into memory and parses its first table.
// sheet selects an xlsx worksheet; empty means the first one.
func LoadTable(path, sheet string) (internal.RawTable, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.RawTable{}, err
	}
	return ParseTable(filepath.Base(path), blob, sheet)
}

func ParseTable(name string, content []byte, sheet string) (internal.RawTable, error) {
	format, err := DetectFormat(name, head(content, 512))
	if err != nil {
		return internal.RawTable{}, err
	}

	var rows [][]string
	switch format {
	case internal.FormatXLSX:
		rows, err = parseXLSX(content, sheet)
	case internal.FormatCSV:
		rows, err = parseCSV(content)
	case internal.FormatHTML:
		rows, err = parseHTMLTable(content)
	case internal.FormatEML:
		return parseEML(name, content, sheet)
	default:
		err = fmt.Errorf("unsupported input type: %s", format)
	}
	if err != nil {
		return internal.RawTable{}, fmt.Errorf("%s: %w", name, err)
	}

	table, err := toTable(rows)
	if err != nil {
		return internal.RawTable{}, fmt.Errorf("%s: %w", name, err)
	}
	table.Name = name
	table.Format = format
	return table, nil
}

func parseXLSX(content []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	// Raw values keep long barcodes out of scientific display formats.
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func parseCSV(content []byte) ([][]string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sniffDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func parseHTMLTable(content []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var rows [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			rows = append(rows, cells)
		})
		return len(rows) == 0
	})
	if len(rows) == 0 {
		return nil, errors.New("no table found")
	}
	return rows, nil
}

// parseEML reads the first spreadsheet attached to a message, so a report
// that arrives by mail can be compared without saving the attachment first.
func parseEML(name string, content []byte, sheet string) (internal.RawTable, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(content))
	if err != nil {
		return internal.RawTable{}, fmt.Errorf("%s: %w", name, err)
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			continue
		}
		format, err := DetectFormat(filename, head(att.Content, 512))
		if err != nil || format == internal.FormatEML {
			continue
		}
		if format == internal.FormatCSV && !isCSVName(filename) {
			continue
		}
		table, err := ParseTable(filename, att.Content, sheet)
		if err != nil {
			return internal.RawTable{}, fmt.Errorf("%s: %w", name, err)
		}
		table.Name = name + "/" + filename
		return table, nil
	}
	return internal.RawTable{}, fmt.Errorf("%s: no spreadsheet attachment", name)
}

// toTable splits off the header (first non-blank row) and drops blank rows.
func toTable(rows [][]string) (internal.RawTable, error) {
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return internal.RawTable{}, errNoHeader
	}

	header := make([]string, 0, len(rows[start]))
	for _, h := range rows[start] {
		header = append(header, util.NormalizeSpaces(h))
	}

	data := make([][]string, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if isBlankRow(row) {
			continue
		}
		data = append(data, row)
	}
	return internal.RawTable{Header: header, Rows: data}, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isCSVName(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".csv"
}

func head(content []byte, n int) []byte {
	if len(content) < n {
		return content
	}
	return content[:n]
}
