package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	got := CSV(Row{OrderID: "1", Product: "Laptop", Category: "Electronics", Quantity: "2", Price: "10.0", OrderDate: "2024-01-01", CustomerID: "c1"})
	assert.Equal(t,
		"order_id,product,category,quantity,price,order_date,customer_id\n"+
			"1,Laptop,Electronics,2,10.0,2024-01-01,c1\n",
		got)
}

func TestRecords_NumbersLinesAfterHeader(t *testing.T) {
	records := Records(ReferenceRows()...)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, 3, records[1].Line)
	assert.Equal(t, "Books", records[1].Category)
}

func TestWriteCSV(t *testing.T) {
	path := WriteCSV(t, "sales.csv", CSV(ReferenceRows()...))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Novel,Books")
}
