// Package export renders the transaction list as downloadable reports.
package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"baketrack/internal/core"
)

// Header is the fixed column order of every export. Downstream consumers
// depend on it, keep it stable.
var Header = []string{"Date", "Product", "Qty", "Price", "Total"}

const filenamePrefix = "Laporan_Penjualan_"

// CSVFilename is the download name for an export made at now.
func CSVFilename(now time.Time) string {
	return filenamePrefix + now.Format(core.DateLayout) + ".csv"
}

func XLSXFilename(now time.Time) string {
	return filenamePrefix + now.Format(core.DateLayout) + ".xlsx"
}

// WriteCSV writes the header and one row per transaction. The product is
// always quoted with embedded quotes doubled; numbers are never quoted.
// Rows are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, t := range txs {
		b.WriteByte('\n')
		b.WriteString(t.Date)
		b.WriteByte(',')
		b.WriteString(quote(t.Product))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(t.Qty))
		b.WriteByte(',')
		b.WriteString(t.Price.String())
		b.WriteByte(',')
		b.WriteString(t.Total.String())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
