package devicelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	config "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Config"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
)

type stubMessage struct {
	topic   string
	payload string
}

func (m stubMessage) Duplicate() bool   { return false }
func (m stubMessage) Qos() byte         { return 1 }
func (m stubMessage) Retained() bool    { return false }
func (m stubMessage) Topic() string     { return m.topic }
func (m stubMessage) MessageID() uint16 { return 0 }
func (m stubMessage) Payload() []byte   { return []byte(m.payload) }
func (m stubMessage) Ack()              {}

type recordingHandler struct {
	amounts  []float64
	statuses []string
	taps     []string
}

func (h *recordingHandler) HandleAmount(tapID string, amount float64) {
	h.taps = append(h.taps, tapID)
	h.amounts = append(h.amounts, amount)
}

func (h *recordingHandler) HandleStatus(tapID string, status string) {
	h.taps = append(h.taps, tapID)
	h.statuses = append(h.statuses, status)
}

func newTestLink(handler EventHandler) *Link {
	cfg := config.MQTTConfig{TopicPrefix: "beer/tap"}
	table := NewTopicTable(map[string]string{"tap-1": "1"})
	return New(cfg, table, handler, logger.NewNop())
}

func TestLink_RoutesAmountAndStatus(t *testing.T) {
	handler := &recordingHandler{}
	link := newTestLink(handler)

	link.onMessage(nil, stubMessage{topic: "beer/tap/1/amount", payload: "142.5"})
	link.onMessage(nil, stubMessage{topic: "beer/tap/1/status", payload: "pouring"})

	assert.Equal(t, []float64{142.5}, handler.amounts)
	assert.Equal(t, []string{"pouring"}, handler.statuses)
	assert.Equal(t, []string{"tap-1", "tap-1"}, handler.taps)
}

func TestLink_DropsMalformedTelemetry(t *testing.T) {
	handler := &recordingHandler{}
	link := newTestLink(handler)

	link.onMessage(nil, stubMessage{topic: "beer/tap/9/amount", payload: "10"})      // unknown tap
	link.onMessage(nil, stubMessage{topic: "beer/tap/1", payload: "10"})             // short topic
	link.onMessage(nil, stubMessage{topic: "beer/tap/1/amount", payload: "a lot"})   // unparsable
	link.onMessage(nil, stubMessage{topic: "beer/tap/1/amount", payload: "-3"})      // negative
	link.onMessage(nil, stubMessage{topic: "beer/tap/1/currentUser", payload: "x"})  // not an inbound kind

	assert.Empty(t, handler.amounts)
	assert.Empty(t, handler.statuses)
}

func TestLink_PublishWhileDisconnectedIsNoop(t *testing.T) {
	link := newTestLink(&recordingHandler{})

	// no client connected; commands are best-effort and must not panic
	link.PublishCommand("tap-1", "reset")
	link.AnnounceCurrentUser("tap-1", "alice")
	link.AnnounceCurrentUser("tap-1", "")
	link.PublishCommand("tap-9", "reset") // unknown tap
}
