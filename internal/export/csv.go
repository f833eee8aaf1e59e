// Package export renders bid responses for download.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Field is one named cell. A nil Value renders as an empty cell.
type Field struct {
	Name  string
	Value any
}

// Row keeps its fields in column order.
type Row []Field

// CSV renders rows with a header taken from the first row's field names.
// Every value is quote-wrapped and inner quotes are doubled. Rows are
// written positionally against that header. No rows gives an empty string.
func CSV(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	header := make([]string, len(rows[0]))
	for i, f := range rows[0] {
		header[i] = f.Name
	}
	writeLine(&b, header)

	for _, row := range rows {
		cells := make([]string, len(header))
		for i := range header {
			if i < len(row) {
				cells[i] = format(row[i].Value)
			}
		}
		writeLine(&b, cells)
	}
	return b.String()
}

func writeLine(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case *float64:
		if t == nil {
			return ""
		}
		return strconv.FormatFloat(*t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
