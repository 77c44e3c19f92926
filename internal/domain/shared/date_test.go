package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 3, 5, 17, 45, 12, 99, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

func TestMonthRange(t *testing.T) {
	r := MonthRange(2024, time.February)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), r.To)

	assert.True(t, r.Contains(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDateRange_OpenBounds(t *testing.T) {
	r := DateRange{From: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
	assert.True(t, r.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)))
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)

	f := Filter{Page: 3, PageSize: 20}
	assert.Equal(t, 40, f.Offset())
	assert.Equal(t, "desc", Filter{}.Normalize().OrderDir)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-30")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("30/06/2024")
	assert.True(t, IsValidation(err))
}
