package snowflake

// Snowflake generates time ordered 63-bit ids that are unique per node.
type Snowflake interface {
	Generate() int64
	NodeID() int64
}
