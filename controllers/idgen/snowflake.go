package idgen

import (
	"log"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func Init() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("Failed to init Snowflake: %v", err)
	}
}

// GenerateID returns a new snowflake id, initialising the node on first use
// so the worker binary and tests do not depend on bootstrap order.
func GenerateID() int64 {
	if node == nil {
		Init()
	}
	return node.Generate().Int64()
}
