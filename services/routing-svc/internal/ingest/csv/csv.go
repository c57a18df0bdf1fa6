// Package csv parses the node/edge CSV schema into the pre-parsed record
// shape domain.BuildGraph consumes. Node rows are id,name,lat,lon,kind;
// edge rows are from,to,time_min,transfer,stairs,bad_pavement,flood_risk,
// mode. Boolean columns accept 0/1 as well as true/false.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"transitroute/pkg/apperror"
	"transitroute/pkg/domain"
)

const (
	nodeColumns = 5
	edgeColumns = 8
)

// LoadNodes parses a node CSV from r. The first row is treated as a header
// and skipped.
func LoadNodes(r io.Reader) ([]domain.NodeRecord, error) {
	rows, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.NodeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // header is row 1, data starts at row 2
		if len(row) != nodeColumns {
			return nil, rowError(rowNum, "expected %d columns, got %d", nodeColumns, len(row))
		}

		lat, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, rowError(rowNum, "invalid lat %q", row[2])
		}
		lon, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, rowError(rowNum, "invalid lon %q", row[3])
		}

		records = append(records, domain.NodeRecord{
			ID:   row[0],
			Name: row[1],
			Lat:  lat,
			Lon:  lon,
			Kind: row[4],
		})
	}

	return records, nil
}

// LoadEdges parses an edge CSV from r. The first row is treated as a
// header and skipped.
func LoadEdges(r io.Reader) ([]domain.EdgeRecord, error) {
	rows, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.EdgeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) != edgeColumns {
			return nil, rowError(rowNum, "expected %d columns, got %d", edgeColumns, len(row))
		}

		timeMin, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, rowError(rowNum, "invalid time_min %q", row[2])
		}

		transfer, err := parseBool(row[3])
		if err != nil {
			return nil, rowError(rowNum, "invalid transfer %q", row[3])
		}
		stairs, err := parseBool(row[4])
		if err != nil {
			return nil, rowError(rowNum, "invalid stairs %q", row[4])
		}
		badPavement, err := parseBool(row[5])
		if err != nil {
			return nil, rowError(rowNum, "invalid bad_pavement %q", row[5])
		}
		floodRisk, err := parseBool(row[6])
		if err != nil {
			return nil, rowError(rowNum, "invalid flood_risk %q", row[6])
		}

		records = append(records, domain.EdgeRecord{
			From:        row[0],
			To:          row[1],
			TimeMin:     timeMin,
			Transfer:    transfer,
			Stairs:      stairs,
			BadPavement: badPavement,
			FloodRisk:   floodRisk,
			Mode:        row[7],
		})
	}

	return records, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // column counts are checked per row by LoadNodes/LoadEdges
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidParameter, "reading CSV")
	}
	return rows, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return strconv.ParseBool(s)
	}
}

func rowError(row int, format string, args ...any) error {
	msg := fmt.Sprintf("row %d: "+format, append([]any{row}, args...)...)
	return apperror.NewWithField(apperror.CodeInvalidParameter, msg, "row")
}
