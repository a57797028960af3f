package bootstrap

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/jt828/go-observer/internal/config"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/jt828/go-observer/pkg/snowflake"
	snowflakeImpl "github.com/jt828/go-observer/pkg/snowflake/implementation"
)

func InitializeSnowflake() (snowflake.Snowflake, error) {
	nodeID, err := PodNodeID()
	if err != nil {
		return nil, err
	}
	return snowflakeImpl.NewSnowflake(nodeID)
}

// InitializeKeyGenerator returns the generator of frame keys for strategy.
func InitializeKeyGenerator(strategy string) (frame.KeyGenerator, error) {
	switch strategy {
	case config.KeyStrategySnowflake:
		node, err := InitializeSnowflake()
		if err != nil {
			return nil, err
		}
		return frame.SnowflakeKeys{Node: node}, nil
	case config.KeyStrategyUUID, "":
		return frame.UUIDKeys{}, nil
	default:
		return nil, fmt.Errorf("unknown key strategy %q", strategy)
	}
}

func PodNodeID() (int64, error) {
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		return 0, fmt.Errorf("HOSTNAME is not set")
	}

	h := fnv.New64a()
	h.Write([]byte(hostname))
	nodeID := int64(binary.BigEndian.Uint64(h.Sum(nil)) % 1024)

	return nodeID, nil
}
