package config

import (
	"encoding/json"
	"log"
	"os"

	"github.com/pkg/errors"
)

type nodeConfig struct {
	// Listen is the ring endpoint multiaddr, e.g. /ip4/127.0.0.1/udp/9000.
	Listen string `json:"listen"`
	// ID overrides the identifier derived from the listen endpoint.
	ID *uint16 `json:"id"`
}

type peerConfig struct {
	ID   uint16 `json:"id"`
	Addr string `json:"addr"`
}

type ringConfig struct {
	// Anchor is the endpoint of an existing ring member to join through.
	// A node with no anchor and no preset neighbors starts its own ring.
	Anchor      string      `json:"anchor"`
	Predecessor *peerConfig `json:"predecessor"`
	Successor   *peerConfig `json:"successor"`
}

type adminConfig struct {
	// Port for the admin/data HTTP server; 0 means the ring port.
	Port int `json:"port"`
}

type storageConfig struct {
	DbPath string `json:"dbPath"`
}

type Config struct {
	Node    nodeConfig    `json:"node"`
	Ring    ringConfig    `json:"ring"`
	Admin   adminConfig   `json:"admin"`
	Storage storageConfig `json:"storage"`
}

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "./config.json"
		log.Printf("No parameter file provided. Will attempt to load default '%s' file.\n", configPath)
	}
	contents, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", configPath)
	}
	var config Config
	if err := json.Unmarshal(contents, &config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", configPath)
	}
	return &config, nil
}
