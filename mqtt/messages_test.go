package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics(t *testing.T) {
	tp := NewTopics("lane1")
	assert.Equal(t, "gowedge/status/node/lane1/ping", tp.Status)
	assert.Equal(t, "gowedge/status/node/lane1/data", tp.Data)
	assert.Equal(t, "gowedge/control/node/lane1/inject", tp.Inject)
	assert.Equal(t, "gowedge/status/node/lane1/barcode/kbd", tp.Barcode("kbd"))
}

func TestNewBarcodeMessage(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	a := NewBarcodeMessage("lane1", "kbd", "A1 B2", []string{"A1", "B2"}, now)
	b := NewBarcodeMessage("lane1", "kbd", "A1 B2", []string{"A1", "B2"}, now)

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, time.UTC, a.Time.Location())

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "A1 B2", fields["barcode"])
	assert.Equal(t, []any{"A1", "B2"}, fields["segments"])
	assert.Equal(t, "2024-03-01T11:00:00Z", fields["time"])
}

func TestParseInject(t *testing.T) {
	inj, err := ParseInject([]byte(`{"target":"kbd","data":"56,56,13","value":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, Inject{Target: "kbd", Data: "56,56,13", Value: "x"}, inj)

	_, err = ParseInject([]byte(`{"data":"56"}`))
	assert.Error(t, err)

	_, err = ParseInject([]byte(`not json`))
	assert.Error(t, err)
}

func TestClient_Disabled(t *testing.T) {
	connected := false
	c, err := New(Config{}, "lane1", Handlers{OnConnect: func() { connected = true }})
	require.NoError(t, err)
	assert.False(t, c.IsEnabled())

	require.NoError(t, c.Connect())
	assert.True(t, connected)
	assert.NoError(t, c.PublishBarcode(BarcodeMessage{Target: "kbd"}))
	assert.NoError(t, c.PublishData(DataMessage{Code: 65, Char: "A"}))
	c.Ping()
	c.Disconnect()
}
