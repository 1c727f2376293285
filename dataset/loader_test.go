package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/reformtrack/align/engine"
)

const sampleCSV = `year,institution,chapter,topic,paragraph_topic,value
2016,EC,democracy_section,Elections,voting,1
2018,EC,democracy_section,elections,voting,-1
2019,EP,democracy_section,PARLIAMENT,oversight,0
2020,EC,23_Judiciary_and_fundamental_rights,fundamental_rights,rights,2.5
not-a-year,EC,democracy_section,elections,voting,1
2021,EC,democracy_section,elections,voting,abc
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseCSV(t *testing.T) {
	rows, skipped, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	require.Len(t, rows, 4)
	assert.Equal(t, Row{Year: 2016, Institution: "EC", Chapter: "democracy_section", Topic: "elections", ParagraphTopic: "voting", Value: 1}, rows[0])
	assert.Equal(t, "parliament", rows[2].Topic, "topic is lowercased")
	assert.Equal(t, 2.5, rows[3].Value)
}

func TestParseCSV_NonFiniteValues(t *testing.T) {
	data := `year,institution,chapter,topic,paragraph_topic,value
2018,EC,democracy_section,elections,voting,NaN
2019,EC,democracy_section,elections,voting,1
2020,EC,democracy_section,elections,voting,Inf
2021,EC,democracy_section,elections,voting,-inf
2022,EC,democracy_section,elections,voting,
`
	rows, skipped, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, 2019, rows[0].Year)
}

func TestParseCSV_HeaderVariants(t *testing.T) {
	data := "Year,Institution,Chapter,Topic,Paragraph Topic,Value,extra\n2019.0,EC,c,t,p,3,x\n"
	rows, skipped, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, 2019, rows[0].Year)
	assert.Equal(t, "p", rows[0].ParagraphTopic)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader("year,institution,chapter,topic,value\n2019,EC,c,t,1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Contains(t, err.Error(), "paragraph_topic")
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.csv"))
	ds, err := l.Load(context.Background())
	assert.Nil(t, ds)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestLoader_NoPath(t *testing.T) {
	_, err := NewLoader("").Load(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestLoader_CachesDataset(t *testing.T) {
	path := writeFile(t, "align.csv", sampleCSV)
	l := NewLoader(path)

	first, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, first.Len())
	assert.Equal(t, 2, first.Skipped)

	// The source disappearing must not matter once loaded.
	require.NoError(t, os.Remove(path))

	second, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoader_ConcurrentFirstLoad(t *testing.T) {
	l := NewLoader(writeFile(t, "align.csv", sampleCSV))

	var wg sync.WaitGroup
	results := make([]*Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := l.Load(context.Background())
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for _, ds := range results[1:] {
		assert.Same(t, results[0], ds)
	}
}

func TestLoader_FailureNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.csv")
	l := NewLoader(path)

	_, err := l.Load(context.Background())
	require.ErrorIs(t, err, ErrDataUnavailable)

	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	ds, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
}

func TestLoader_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "align.parquet")

	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 1)
	require.NoError(t, err)
	for _, r := range []parquetRow{
		{Year: 2018, Institution: "EC", Chapter: "democracy_section", Topic: "Elections", ParagraphTopic: "voting", Value: 1},
		{Year: 2019, Institution: "EP", Chapter: "democracy_section", Topic: "parliament", ParagraphTopic: "oversight", Value: -2},
		{Year: 2020, Institution: "EP", Chapter: "democracy_section", Topic: "parliament", ParagraphTopic: "oversight", Value: math.NaN()},
	} {
		require.NoError(t, pw.Write(r))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())

	ds, err := NewLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 1, ds.Skipped, "NaN value")
	assert.Equal(t, "elections", ds.Rows[0].Topic)
	assert.Equal(t, -2.0, ds.Rows[1].Value)
}

func TestDataset_View(t *testing.T) {
	ds := New([]Row{{Year: 2019, Institution: "EC", Chapter: "c", Topic: "t", ParagraphTopic: "p", Value: 1.5}}, "mem")
	v := ds.View()

	require.Equal(t, 1, v.Len())
	assert.Equal(t, "2019", v.Dimension(0, engine.DimYear))
	assert.Equal(t, "p", v.Dimension(0, engine.DimParagraphTopic))
	assert.Equal(t, 1.5, v.Measure(0, engine.MeasureValue))
	assert.Equal(t, RequiredColumns[:5], v.DimensionKeys())
	assert.Equal(t, []string{engine.MeasureValue}, v.MeasureKeys())
}
