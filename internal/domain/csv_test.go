package domain

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnergyCSV = `year,region,per_capita,dc_per_day
2001,Loudoun,"1,000","2,000"
2002,bad,row
2003,Loudoun,"1,500","3,500"
`

func TestParseConsumptionCSV_SkipsMalformedRow(t *testing.T) {
	result := ParseConsumptionCSV(testEnergyCSV, EnergySchema)

	want := []ConsumptionRecord{
		{Year: 2001, PerCapita: 1000, DCMetric: 2000},
		{Year: 2003, PerCapita: 1500, DCMetric: 3500},
	}
	if diff := cmp.Diff(want, result.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 3, result.Rejected[0].Line)
	assert.Contains(t, result.Rejected[0].Reason, "expected at least 4 fields")
}

func TestParseConsumptionCSV_MalformedRowDoesNotReachSeries(t *testing.T) {
	result := ParseConsumptionCSV(testEnergyCSV, EnergySchema)

	series := BuildConsumptionSeries(result.Records, SeriesOptions{
		Years:            YearRange{Min: 2001, Max: 2003},
		Population:       NewPopulationModel(DefaultPopulationAnchors...),
		DefaultPerCapita: DefaultEnergyPerCapitaMWh,
	})

	require.Len(t, series, 3)
	assert.Equal(t, 2000.0*DaysPerYear, series[1].DC, "2002 carries 2001 only")
	assert.Equal(t, 1000.0, series[1].PerCapita)
	assert.Equal(t, (2000.0+3500.0)*DaysPerYear, series[2].DC)
}

func TestParseConsumptionCSV_RowRules(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		want   *ConsumptionRecord
		reason string
	}{
		{name: "plain numbers", row: "2010,Loudoun,10.4,6030", want: &ConsumptionRecord{Year: 2010, PerCapita: 10.4, DCMetric: 6030}},
		{name: "quoted with separators", row: `2011,"Loudoun, VA","10.5","6,500.5"`, want: &ConsumptionRecord{Year: 2011, PerCapita: 10.5, DCMetric: 6500.5}},
		{name: "extra columns ignored", row: "2012,Loudoun,1,2,extra,fields", want: &ConsumptionRecord{Year: 2012, PerCapita: 1, DCMetric: 2}},
		{name: "spaces around fields", row: " 2013 , Loudoun , 3 , 4 ", want: &ConsumptionRecord{Year: 2013, PerCapita: 3, DCMetric: 4}},
		{name: "too few fields", row: "2014,Loudoun,5", reason: "fields"},
		{name: "non-numeric year", row: "abcd,Loudoun,1,2", reason: "year"},
		{name: "fractional year", row: "2014.5,Loudoun,1,2", reason: "year"},
		{name: "non-numeric value", row: "2015,Loudoun,n/a,2", reason: "per-capita"},
		{name: "empty value", row: "2015,Loudoun,1,", reason: "empty"},
		{name: "NaN value", row: "2016,Loudoun,NaN,2", reason: "not a number"},
		{name: "infinite value", row: "2016,Loudoun,1,Inf", reason: "not a number"},
		{name: "negative value", row: "2017,Loudoun,1,-2", reason: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseConsumptionCSV("header\n"+tt.row+"\n", EnergySchema)
			if tt.want != nil {
				require.Len(t, result.Records, 1)
				assert.Equal(t, *tt.want, result.Records[0])
				assert.Empty(t, result.Rejected)
				return
			}
			assert.Empty(t, result.Records)
			require.Len(t, result.Rejected, 1)
			assert.Contains(t, result.Rejected[0].Reason, tt.reason)
		})
	}
}

func TestParseConsumptionCSV_BlankLinesAndOrdering(t *testing.T) {
	text := "year,region,pc,dc\r\n2005,a,1,1\r\n\r\n2003,a,2,2\r\n2005,a,3,3\r\n\n\n"

	result := ParseConsumptionCSV(text, WaterSchema)

	years := make([]int, len(result.Records))
	for i, r := range result.Records {
		years[i] = r.Year
	}
	assert.Equal(t, []int{2005, 2003, 2005}, years, "input order kept, duplicates kept")
	assert.Empty(t, result.Rejected)
}

func TestParseConsumptionCSV_UnbalancedQuoteIsContained(t *testing.T) {
	text := "h\n2001,\"Loudoun,1,2\n2002,Loudoun,3,4\n"

	result := ParseConsumptionCSV(text, EnergySchema)

	require.Len(t, result.Records, 1)
	assert.Equal(t, 2002, result.Records[0].Year)
}

func TestParseConsumptionCSV_HeaderOnlyAndEmpty(t *testing.T) {
	assert.Empty(t, ParseConsumptionCSV("", EnergySchema).Records)
	assert.Empty(t, ParseConsumptionCSV("year,region,pc,dc", EnergySchema).Records)
}

func TestReadConsumptionCSV_ReaderError(t *testing.T) {
	boom := errors.New("disk gone")
	r := iotest.ErrReader(boom)

	_, err := ReadConsumptionCSV(r, EnergySchema)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "energy")
}

func TestReadConsumptionCSV_CustomSchema(t *testing.T) {
	schema := Schema{Name: "custom", YearColumn: 2, PerCapitaColumn: 0, DCColumn: 1}

	result, err := ReadConsumptionCSV(strings.NewReader("pc,dc,year\n7,8,2020\n"), schema)

	require.NoError(t, err)
	assert.Equal(t, []ConsumptionRecord{{Year: 2020, PerCapita: 7, DCMetric: 8}}, result.Records)
}
