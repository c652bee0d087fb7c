package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRangeCombine(t *testing.T) {
	t.Parallel()

	t.Run("no end date gives a nil end", func(t *testing.T) {
		fields := map[string]string{}
		r, ok := DateRangeInput{StartDate: "2024-11-20", StartTime: "08:00"}.combine(fields, true)
		require.True(t, ok, fields)
		assert.Nil(t, r.end)

		date, clock := SplitDateTime(r.start)
		assert.Equal(t, "2024-11-20", date)
		assert.Equal(t, "08:00", clock)
	})

	t.Run("end date without time reuses the start time", func(t *testing.T) {
		fields := map[string]string{}
		r, ok := DateRangeInput{StartDate: "2024-11-20", StartTime: "08:00", EndDate: "2024-11-20"}.combine(fields, true)
		require.True(t, ok, fields)
		require.NotNil(t, r.end)

		date, clock := SplitOptional(r.end)
		assert.Equal(t, "2024-11-20", date)
		assert.Equal(t, "08:00", clock)
	})

	t.Run("explicit end time", func(t *testing.T) {
		fields := map[string]string{}
		r, ok := DateRangeInput{StartDate: "2024-11-20", StartTime: "08:00", EndDate: "2024-11-21", EndTime: "18:30"}.combine(fields, true)
		require.True(t, ok, fields)
		require.NotNil(t, r.end)
		assert.True(t, r.end.After(r.start))
		_, clock := SplitOptional(r.end)
		assert.Equal(t, "18:30", clock)
	})

	t.Run("missing start time means midnight", func(t *testing.T) {
		fields := map[string]string{}
		r, ok := DateRangeInput{StartDate: "2024-11-20"}.combine(fields, true)
		require.True(t, ok, fields)
		_, clock := SplitDateTime(r.start)
		assert.Equal(t, "00:00", clock)
	})

	t.Run("bad end values are reported on the end fields", func(t *testing.T) {
		cases := []struct {
			in    DateRangeInput
			field string
			msg   string
		}{
			{DateRangeInput{StartDate: "2024-11-20", StartTime: "08:00", EndDate: "21/11/2024"}, "endDate", MsgInvalidDate},
			{DateRangeInput{StartDate: "2024-11-20", StartTime: "08:00", EndDate: "2024-11-21", EndTime: "25:99"}, "endTime", MsgInvalidTime},
			{DateRangeInput{StartDate: "2024-11-20", StartTime: "8h", EndDate: "2024-11-21"}, "startTime", MsgInvalidTime},
			{DateRangeInput{StartDate: "20/11/2024", EndDate: "2024-11-21"}, "startDate", MsgInvalidDate},
		}
		for _, tc := range cases {
			fields := map[string]string{}
			_, ok := tc.in.combine(fields, true)
			assert.False(t, ok)
			assert.Equal(t, map[string]string{tc.field: tc.msg}, fields)
		}
	})
}

func TestCombineDateTimeRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := CombineDateTime("20/11/2024", "08:00")
	assert.ErrorIs(t, err, errInvalidDate)

	_, err = CombineDateTime("2024-11-20", "8h")
	assert.ErrorIs(t, err, errInvalidTime)
}

func TestSplitOptionalNil(t *testing.T) {
	t.Parallel()
	date, clock := SplitOptional(nil)
	assert.Empty(t, date)
	assert.Empty(t, clock)
}
