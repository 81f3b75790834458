package orders_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucaamst/farmy/internal/orders"
	_ "github.com/Lucaamst/farmy/testing"
)

func TestWriteCSV(t *testing.T) {
	courier := "k1"
	delivered := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rows := []orders.Order{
		{
			ID: "o1", CompanyID: "c1", CustomerName: "Mario", CustomerPhone: "+39111",
			DeliveryAddress: "Via Roma 1", Reference: "REF-1", Status: orders.StatusDelivered,
			CourierID: &courier, CreatedAt: delivered.Add(-time.Hour), DeliveredAt: &delivered,
		},
		{
			ID: "o2", CompanyID: "c1", CustomerName: "Maria",
			DeliveryAddress: "Via Milano 2", Status: orders.StatusPending,
			CreatedAt: delivered,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, orders.WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Customer", records[0][1])
	assert.Equal(t, "Mario", records[1][1])
	assert.Equal(t, "delivered", records[1][5])
	assert.Equal(t, "k1", records[1][6])
	// Open orders leave courier and delivery time blank.
	assert.Equal(t, "", records[2][6])
	assert.Equal(t, "", records[2][8])
}

func TestWriteXLSXProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, orders.WriteXLSX(&buf, []orders.Order{
		{ID: "o1", CustomerName: "Mario", DeliveryAddress: "Via Roma 1", Status: orders.StatusPending, CreatedAt: time.Now()},
	}))
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
