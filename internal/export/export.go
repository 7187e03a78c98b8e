// Package export renders the consolidated shopping list in its two download
// formats. The output is part of the API contract and bit-exact: a CSV file
// (RFC4180, CRLF line endings, UTF-8) and a plain-text file (space-joined
// header and value lines, one trailing newline each). An empty list produces
// the header row and nothing else in both formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// Headers are the column names of both export formats, in order.
var Headers = []string{"Ингредиент", "Количество", "Единицы_измерения"}

// Item is one consolidated shopping-list row.
type Item struct {
	Name   string
	Amount int64
	Unit   string
}

// WriteCSV renders items as RFC4180 CSV with a header row.
func WriteCSV(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write([]string{it.Name, strconv.FormatInt(it.Amount, 10), it.Unit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText renders items as space-joined lines with a header line.
func WriteText(w io.Writer, items []Item) error {
	if _, err := io.WriteString(w, strings.Join(Headers, " ")+"\n"); err != nil {
		return err
	}
	for _, it := range items {
		line := it.Name + " " + strconv.FormatInt(it.Amount, 10) + " " + it.Unit + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
