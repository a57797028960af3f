package frame

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/jt828/go-observer/pkg/snowflake"
)

// KeyGenerator produces the globally unique key of a new span. The key names
// the persisted record.
type KeyGenerator interface {
	NewKey() string
}

type UUIDKeys struct{}

func (UUIDKeys) NewKey() string {
	return uuid.NewString()
}

type SnowflakeKeys struct {
	Node snowflake.Snowflake
}

func (k SnowflakeKeys) NewKey() string {
	return strconv.FormatInt(k.Node.Generate(), 10)
}
