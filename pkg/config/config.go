// Client defaults loaded from an ini file, overridable by CLI flags
package config

import (
	tftp "github.com/samsamfire/gotftp"
	"gopkg.in/ini.v1"
)

type ClientConfig struct {
	Server string
	// Well-known service port of the server
	Port uint16
	// Per-wait timeout in seconds, 0 waits forever
	Timeout uint
	// Retransmission budget of one outstanding message
	Retries uint16
	// Wire codec name : classic or proto
	Codec string
}

func Default() ClientConfig {
	return ClientConfig{
		Port:    tftp.DefaultPort,
		Timeout: 5,
		Retries: 3,
		Codec:   "classic",
	}
}

// Load client settings from the [client] section of an ini file.
// Missing keys keep their defaults.
func LoadFile(path string) (ClientConfig, error) {
	cfg := Default()
	file, err := ini.Load(path)
	if err != nil {
		return cfg, err
	}
	section := file.Section("client")
	cfg.Server = section.Key("server").MustString(cfg.Server)
	cfg.Port = uint16(section.Key("port").MustUint(uint(cfg.Port)))
	cfg.Timeout = section.Key("timeout").MustUint(cfg.Timeout)
	cfg.Retries = uint16(section.Key("retries").MustUint(uint(cfg.Retries)))
	cfg.Codec = section.Key("codec").MustString(cfg.Codec)
	return cfg, nil
}
