package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topics are the topic names used by one node.
type Topics struct {
	node   string
	Status string
	Data   string
	Inject string
}

// NewTopics derives the topic names for nodeID.
func NewTopics(nodeID string) Topics {
	return Topics{
		node:   nodeID,
		Status: fmt.Sprintf("gowedge/status/node/%s/ping", nodeID),
		Data:   fmt.Sprintf("gowedge/status/node/%s/data", nodeID),
		Inject: fmt.Sprintf("gowedge/control/node/%s/inject", nodeID),
	}
}

// Barcode returns the topic scans from target are published on.
func (t Topics) Barcode(target string) string {
	return fmt.Sprintf("gowedge/status/node/%s/barcode/%s", t.node, target)
}

// BarcodeMessage is the payload published for an accepted scan.
type BarcodeMessage struct {
	ID       string    `json:"id"`
	Node     string    `json:"node"`
	Target   string    `json:"target"`
	Barcode  string    `json:"barcode"`
	Segments []string  `json:"segments"`
	Time     time.Time `json:"time"`
}

// NewBarcodeMessage stamps a scan with a fresh id.
func NewBarcodeMessage(node, target, barcode string, segments []string, now time.Time) BarcodeMessage {
	return BarcodeMessage{
		ID:       uuid.NewString(),
		Node:     node,
		Target:   target,
		Barcode:  barcode,
		Segments: segments,
		Time:     now.UTC(),
	}
}

// DataMessage is the payload published per received key code.
type DataMessage struct {
	Code int    `json:"code"`
	Char string `json:"char"`
}

// Inject asks the node to replay a code stream into a target, optionally
// setting the field value first.
type Inject struct {
	Target string `json:"target"`
	Data   string `json:"data"`
	Value  string `json:"value,omitempty"`
	Flush  bool   `json:"flush,omitempty"`
}

// ParseInject decodes an inject request.
func ParseInject(payload []byte) (Inject, error) {
	var inj Inject
	if err := json.Unmarshal(payload, &inj); err != nil {
		return Inject{}, fmt.Errorf("decode inject: %w", err)
	}
	if inj.Target == "" {
		return Inject{}, errors.New("inject without target")
	}
	return inj, nil
}
