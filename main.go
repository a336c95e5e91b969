package main

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/go-ringdht/config"
	"github.com/go-ringdht/control"
	"github.com/go-ringdht/dht"
	"github.com/go-ringdht/log"
	"github.com/go-ringdht/repository"
	"github.com/go-ringdht/ring"
	"github.com/go-ringdht/transport"
)

const stabilizationInterval = 1 * time.Second

func main() {
	log.InitLogger()
	defer log.Sync()
	logger := log.Log()

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Errorf("Failed to load config: %s", err)
		os.Exit(1)
	}

	self, err := selfPeer(cfg)
	if err != nil {
		logger.Errorf("Invalid node config: %s", err)
		os.Exit(1)
	}
	predecessor, successor, anchor, err := ringPeers(cfg, self)
	if err != nil {
		logger.Errorf("Invalid ring config: %s", err)
		os.Exit(1)
	}

	if err := repository.InitDB(cfg, &control.Datum{}); err != nil {
		logger.Errorf("Failed to initialize storage: %s", err)
		os.Exit(1)
	}

	trpt, err := transport.Listen(self.IP, self.Port, logger)
	if err != nil {
		logger.Errorf("Failed to open ring socket: %s", err)
		os.Exit(1)
	}
	defer trpt.Close()

	node := dht.NewNode(self, predecessor, successor, trpt, dht.NewRingMaintainer(), logger)
	if err := control.SetNode(node); err != nil {
		logger.Errorf("Failed to initialize control plane: %s", err)
		os.Exit(1)
	}

	go func() {
		if err := control.StartAdminServer(cfg, self.Port); err != nil {
			logger.Errorf("Admin server stopped: %s", err)
			os.Exit(1)
		}
	}()

	if !anchor.IsZero() {
		if err := node.SendJoin(anchor); err != nil {
			logger.Errorf("Failed to send join: %s", err)
			os.Exit(1)
		}
		logger.Infof("Sent join to %s", anchor)
	}

	stop := make(chan struct{})
	defer close(stop)
	go node.RunStabilization(stabilizationInterval, stop)

	logger.Infof("I am %s", self)
	for {
		msg, from, err := trpt.Receive()
		if err != nil {
			if errors.Is(err, transport.ErrDatagramSize) {
				continue
			}
			logger.Errorf("Receive failed: %s", err)
			os.Exit(1)
		}
		logger.Debugf("Received %s from %s", msg.Opcode, from)
		if err := node.Process(msg); err != nil {
			logger.Errorf("Processing failed: %s", err)
			os.Exit(1)
		}
	}
}

func selfPeer(cfg *config.Config) (ring.Peer, error) {
	ip, port, err := ring.ParseAddr(cfg.Node.Listen)
	if err != nil {
		return ring.Peer{}, err
	}
	id := ring.HashOf([]byte(cfg.Node.Listen))
	if cfg.Node.ID != nil {
		id = ring.ID(*cfg.Node.ID)
	}
	return ring.Peer{ID: id, IP: ip, Port: port}, nil
}

func ringPeers(cfg *config.Config, self ring.Peer) (predecessor, successor, anchor ring.Peer, err error) {
	if cfg.Ring.Predecessor != nil {
		predecessor, err = presetPeer(cfg.Ring.Predecessor.ID, cfg.Ring.Predecessor.Addr)
		if err != nil {
			return
		}
	}
	if cfg.Ring.Successor != nil {
		successor, err = presetPeer(cfg.Ring.Successor.ID, cfg.Ring.Successor.Addr)
		if err != nil {
			return
		}
	}
	if cfg.Ring.Anchor != "" {
		var ip [4]byte
		var port uint16
		ip, port, err = ring.ParseAddr(cfg.Ring.Anchor)
		if err != nil {
			return
		}
		anchor = ring.Peer{IP: ip, Port: port}
	}
	// A node starting its own ring owns the whole identifier space.
	if predecessor.IsZero() && successor.IsZero() && anchor.IsZero() {
		predecessor, successor = self, self
	}
	return
}

func presetPeer(id uint16, addr string) (ring.Peer, error) {
	ip, port, err := ring.ParseAddr(addr)
	if err != nil {
		return ring.Peer{}, err
	}
	return ring.Peer{ID: ring.ID(id), IP: ip, Port: port}, nil
}
