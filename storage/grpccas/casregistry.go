package grpccas

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"xdao.co/vault/storage"
	"xdao.co/vault/storage/casregistry"
)

// Flag names and config keys.
const (
	TargetKey      = "grpc-target"
	TimeoutKey     = "grpc-timeout"
	MaxMsgBytesKey = "grpc-max-msg-bytes"
)

var (
	flagTarget      string
	flagTimeout     time.Duration
	flagMaxMsgBytes int
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "grpc",
		Description: "gRPC CAS client (talks to vault-casd)",
		Usage:       casregistry.UsageCLI,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagTarget, TargetKey, "", "gRPC target host:port (for --backend=grpc)")
			fs.DurationVar(&flagTimeout, TimeoutKey, 0, "Per-RPC timeout (for --backend=grpc)")
			fs.IntVar(&flagMaxMsgBytes, MaxMsgBytesKey, 0, "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults")
		},
		Open: func() (storage.CAS, func() error, error) {
			return open(flagTarget, flagTimeout, flagMaxMsgBytes)
		},
		OpenConfig: func(cfg map[string]string) (storage.CAS, func() error, error) {
			var timeout time.Duration
			if v := cfg[TimeoutKey]; v != "" {
				d, err := time.ParseDuration(v)
				if err != nil {
					return nil, nil, fmt.Errorf("grpccas: %s: %w", TimeoutKey, err)
				}
				timeout = d
			}
			var maxMsg int
			if v := cfg[MaxMsgBytesKey]; v != "" {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, nil, fmt.Errorf("grpccas: %s: %w", MaxMsgBytesKey, err)
				}
				maxMsg = n
			}
			return open(cfg[TargetKey], timeout, maxMsg)
		},
	})
}

func open(target string, timeout time.Duration, maxMsgBytes int) (storage.CAS, func() error, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, nil, fmt.Errorf("grpccas: missing --%s", TargetKey)
	}
	client, err := Dial(target, DialOptions{MaxMsgBytes: maxMsgBytes})
	if err != nil {
		return nil, nil, err
	}
	client.Timeout = timeout
	return client, client.Close, nil
}
