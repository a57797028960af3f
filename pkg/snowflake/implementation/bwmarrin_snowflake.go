package implementation

import (
	"fmt"

	bwmarrin "github.com/bwmarrin/snowflake"
	"github.com/jt828/go-observer/pkg/snowflake"
)

type bwmarrinSnowflake struct {
	node   *bwmarrin.Node
	nodeID int64
}

// NewSnowflake returns a generator for nodeID, which must fit in the 10 node
// bits (0-1023).
func NewSnowflake(nodeID int64) (snowflake.Snowflake, error) {
	node, err := bwmarrin.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &bwmarrinSnowflake{node: node, nodeID: nodeID}, nil
}

func (s *bwmarrinSnowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func (s *bwmarrinSnowflake) NodeID() int64 {
	return s.nodeID
}
