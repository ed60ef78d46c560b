package id

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	nodeID := int64(1)
	if v := os.Getenv("NODE_ID"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("invalid NODE_ID %q: %v", v, err))
		}
		nodeID = parsed
	}

	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		panic(fmt.Sprintf("initializing snowflake node: %v", err))
	}
	node = n
}

// New returns a process-unique, time-ordered int64 identifier.
func New() int64 {
	return node.Generate().Int64()
}
