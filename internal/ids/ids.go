// ABOUTME: Time-ordered identifier generation for synthesized records
// ABOUTME: Snowflake ids with a KSUID fallback when the node cannot be built

package ids

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// New returns a time-ordered id. The snowflake node comes from PANEL_NODE_ID
// (default 1); an invalid node id degrades to a KSUID.
func New() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("PANEL_NODE_ID"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		node, _ = snowflake.NewNode(nodeID)
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}

// NewWithNode generates a snowflake id string using the provided node id.
// If the node cannot be initialized, it falls back to a KSUID string.
func NewWithNode(nodeID int64) string {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return NewKSUID()
	}
	return n.Generate().String()
}
