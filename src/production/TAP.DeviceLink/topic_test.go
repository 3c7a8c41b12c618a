package devicelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *TopicTable {
	return NewTopicTable(map[string]string{
		"tap-1": "1",
		"tap-2": "left",
	})
}

func TestTopicTable_Bidirectional(t *testing.T) {
	table := testTable()

	topic, ok := table.TopicFor("tap-1")
	require.True(t, ok)
	assert.Equal(t, "1", topic)

	tapID, ok := table.TapFor("left")
	require.True(t, ok)
	assert.Equal(t, "tap-2", tapID)

	_, ok = table.TopicFor("tap-9")
	assert.False(t, ok)
	_, ok = table.TapFor("9")
	assert.False(t, ok)
}

func TestParseTopic_ValidShapes(t *testing.T) {
	table := testTable()

	msg, err := parseTopic("beer/tap", "beer/tap/1/amount", table)
	require.NoError(t, err)
	assert.Equal(t, "tap-1", msg.TapID)
	assert.Equal(t, KindAmount, msg.Kind)

	msg, err = parseTopic("beer/tap", "beer/tap/left/status", table)
	require.NoError(t, err)
	assert.Equal(t, "tap-2", msg.TapID)
	assert.Equal(t, KindStatus, msg.Kind)
}

func TestParseTopic_Malformed(t *testing.T) {
	table := testTable()

	cases := []struct {
		name  string
		topic string
	}{
		{"wrong prefix", "coffee/tap/1/amount"},
		{"missing kind", "beer/tap/1"},
		{"extra segment", "beer/tap/1/amount/extra"},
		{"empty tap segment", "beer/tap//amount"},
		{"empty kind segment", "beer/tap/1/"},
		{"unknown tap topic", "beer/tap/9/amount"},
		{"prefix only", "beer/tap"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseTopic("beer/tap", tc.topic, table)
			assert.Error(t, err)
		})
	}
}
