// Package leadid issues reference IDs for dispatched appraisal leads.
package leadid

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const maxNode = 1023

var (
	mu   sync.RWMutex
	node *snowflake.Node
)

// Init configures the generator node. Valid node IDs are 0-1023.
func Init(nodeID int64) error {
	if nodeID < 0 || nodeID > maxNode {
		return fmt.Errorf("snowflake node id %d out of range 0-%d", nodeID, maxNode)
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("create snowflake node: %w", err)
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func current() *snowflake.Node {
	mu.RLock()
	n := node
	mu.RUnlock()
	if n != nil {
		return n
	}
	if err := Init(0); err != nil {
		panic(err)
	}
	mu.RLock()
	defer mu.RUnlock()
	return node
}

// NextID returns a new unique, time-ordered ID.
func NextID() int64 {
	return current().Generate().Int64()
}

// NextReference returns a new ID in the short form quoted to customers,
// e.g. "HW-1Z4K9QX3M0W".
func NextReference() string {
	return Format(NextID())
}

// Format renders an ID as a reference string.
func Format(id int64) string {
	return "HW-" + strings.ToUpper(snowflake.ID(id).Base36())
}

// Parse converts a reference string back to its ID.
func Parse(ref string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ref), "HW-")
	id, err := snowflake.ParseBase36(strings.ToLower(trimmed))
	if err != nil {
		return 0, fmt.Errorf("parse reference %q: %w", ref, err)
	}
	return id.Int64(), nil
}
