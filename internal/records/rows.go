package records

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a record file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf selects the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported record file extension: %s", path)
	}
}

// row is one record keyed by lower-case column name
type row map[string]string

func (r row) get(key string) string {
	return strings.TrimSpace(r[key])
}

func readRowsFile(path string) ([]row, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := readRows(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

func readRows(r io.Reader, format Format) ([]row, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatYAML:
		var items []map[string]interface{}
		if err := yaml.NewDecoder(r).Decode(&items); err != nil && err != io.EOF {
			return nil, err
		}
		return normalize(items), nil
	case FormatJSON:
		var items []map[string]interface{}
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&items); err != nil && err != io.EOF {
			return nil, err
		}
		return normalize(items), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func readCSV(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		rw := make(row, len(header))
		for i, h := range header {
			if i < len(rec) {
				rw[h] = rec[i]
			}
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

func normalize(items []map[string]interface{}) []row {
	rows := make([]row, 0, len(items))
	for _, item := range items {
		rw := make(row, len(item))
		for k, v := range item {
			if v == nil {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(k))
			switch val := v.(type) {
			case time.Time:
				rw[key] = val.Format("2006-01-02")
			default:
				rw[key] = fmt.Sprint(val)
			}
		}
		rows = append(rows, rw)
	}
	return rows
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
