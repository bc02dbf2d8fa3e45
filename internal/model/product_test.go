package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanRecordStrings(t *testing.T) {
	r := CleanRecord{
		Title:     "T-shirt 2",
		Price:     1634400,
		Rating:    3.9,
		Colors:    3,
		Size:      "M",
		Gender:    "Women",
		Timestamp: "2024-01-01T00:00:00Z",
	}
	require.Equal(t,
		[]string{"T-shirt 2", "1634400", "3.9", "3", "M", "Women", "2024-01-01T00:00:00Z"},
		r.Strings(),
	)
	require.Len(t, r.Strings(), len(Columns))
}

func TestTableHead(t *testing.T) {
	tbl := Table{Records: make([]CleanRecord, 3)}
	require.Len(t, tbl.Head(5), 3)
	require.Len(t, tbl.Head(2), 2)
	require.Empty(t, tbl.Head(-1))
	require.True(t, Table{}.Empty())
	require.Equal(t, 3, tbl.Len())
}
