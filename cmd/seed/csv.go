package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type row struct {
	line  int
	code  int64
	name  string
	price decimal.Decimal
	stock int64
}

// readRows decodifica el CSV. Una primera línea con código no numérico se toma como cabecera.
func readRows(r io.Reader, encoding string) ([]row, error) {
	switch strings.ToLower(encoding) {
	case "utf8", "utf-8", "":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("codificación no soportada %q", encoding)
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 3 || len(rec) > 4 {
			return nil, fmt.Errorf("línea %d: se esperaban 3 o 4 columnas, hay %d", line, len(rec))
		}
		code, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("línea %d: código %q inválido", line, rec[0])
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio %q inválido", line, rec[2])
		}
		var stock int64
		if len(rec) == 4 && strings.TrimSpace(rec[3]) != "" {
			stock, err = strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
			if err != nil || stock < 0 {
				return nil, fmt.Errorf("línea %d: stock %q inválido", line, rec[3])
			}
		}
		rows = append(rows, row{
			line:  line,
			code:  code,
			name:  strings.TrimSpace(rec[1]),
			price: price,
			stock: stock,
		})
	}
	return rows, nil
}
