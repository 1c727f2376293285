package dataset

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// parquetRow is the on-disk layout of a Parquet source table.
type parquetRow struct {
	Year           int32   `parquet:"name=year, type=INT32"`
	Institution    string  `parquet:"name=institution, type=BYTE_ARRAY, convertedtype=UTF8"`
	Chapter        string  `parquet:"name=chapter, type=BYTE_ARRAY, convertedtype=UTF8"`
	Topic          string  `parquet:"name=topic, type=BYTE_ARRAY, convertedtype=UTF8"`
	ParagraphTopic string  `parquet:"name=paragraph_topic, type=BYTE_ARRAY, convertedtype=UTF8"`
	Value          float64 `parquet:"name=value, type=DOUBLE"`
}

// readParquet reads every row of a Parquet file. Rows with a non-finite
// value are skipped and counted.
func readParquet(path string, parallel int64) ([]Row, int, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: open parquet file: %v", ErrDataUnavailable, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(parquetRow), parallel)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: create parquet reader: %v", ErrDataUnavailable, err)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	records := make([]parquetRow, numRows)
	if numRows > 0 {
		if err := pr.Read(&records); err != nil {
			return nil, 0, fmt.Errorf("%w: read parquet rows: %v", ErrDataUnavailable, err)
		}
	}

	rows := make([]Row, 0, len(records))
	skipped := 0
	for _, r := range records {
		if !finite(r.Value) {
			skipped++
			continue
		}
		rows = append(rows, Row{
			Year:           int(r.Year),
			Institution:    r.Institution,
			Chapter:        r.Chapter,
			Topic:          normalizeTopic(r.Topic),
			ParagraphTopic: r.ParagraphTopic,
			Value:          r.Value,
		})
	}
	return rows, skipped, nil
}
