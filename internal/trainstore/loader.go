package trainstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSV headers of the train export.
const (
	ColumnTrainNo   = "Train no."
	ColumnTrainName = "Train name"
	ColumnStarts    = "Starts"
	ColumnEnds      = "Ends"
)

var (
	ErrEmptyCSV    = errors.New("CSV file is empty")
	ErrCSVNotFound = errors.New("CSV file not found")
)

var requiredColumns = []string{ColumnTrainNo, ColumnTrainName, ColumnStarts, ColumnEnds}

func openCSV(filePath string) (*os.File, *csv.Reader, []string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrCSVNotFound, filePath)
		}
		return nil, nil, nil, err
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Gets just the first row, which contains the headers
	headers, err := reader.Read()
	if err != nil {
		file.Close()
		if errors.Is(err, io.EOF) {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrEmptyCSV, filePath)
		}
		return nil, nil, nil, fmt.Errorf("read CSV header: %w", err)
	}
	headers[0] = strings.TrimPrefix(headers[0], "\ufeff")

	return file, reader, headers, nil
}

// ReadCSVForColumnNames returns the header row of filePath.
func ReadCSVForColumnNames(filePath string) ([]string, error) {
	file, _, headers, err := openCSV(filePath)
	if err != nil {
		return nil, err
	}
	file.Close()
	return headers, nil
}

// columnIndex maps each required column to its position in headers.
func columnIndex(headers []string) (map[string]int, error) {
	index := make(map[string]int, len(requiredColumns))
	for i, header := range headers {
		if _, seen := index[header]; !seen {
			index[header] = i
		}
	}
	for _, column := range requiredColumns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("CSV is missing column %q", column)
		}
	}
	return index, nil
}

// ReadTrainsCSV reads every data row of filePath into trains. IDs are left
// zero.
func ReadTrainsCSV(filePath string) ([]Train, error) {
	file, reader, headers, err := openCSV(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	index, err := columnIndex(headers)
	if err != nil {
		return nil, err
	}

	trains := []Train{}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}
		if len(row) != len(headers) {
			return nil, fmt.Errorf("CSV line %d has %d fields, header has %d", line, len(row), len(headers))
		}

		trains = append(trains, Train{
			TrainNo:   row[index[ColumnTrainNo]],
			TrainName: row[index[ColumnTrainName]],
			Starts:    row[index[ColumnStarts]],
			Ends:      row[index[ColumnEnds]],
		})
	}
	return trains, nil
}

// stagingColumns names every CSV column for the staging table. Unnamed
// columns, such as an exported index, become col_<n>.
func stagingColumns(headers []string) []string {
	columns := make([]string, len(headers))
	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			header = fmt.Sprintf("col_%d", i)
		}
		columns[i] = header
	}
	return columns
}
