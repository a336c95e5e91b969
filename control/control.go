package control

import (
	"errors"
	"sync"

	"github.com/go-ringdht/dht"
)

var node *dht.Node
var once sync.Once

// SetNode hands the control plane its node. May only be called once.
func SetNode(n *dht.Node) error {
	if n == nil {
		return errors.New("node must not be nil")
	}
	set := false
	once.Do(func() {
		node = n
		set = true
	})
	if !set {
		return errors.New("node was already set")
	}
	return nil
}

func getNode() *dht.Node {
	return node
}
