// Command vault-casd serves a CAS backend over gRPC so that several vault
// tools can share exported documents.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"xdao.co/vault/internal/config"
	"xdao.co/vault/internal/logging"
	"xdao.co/vault/storage"
	"xdao.co/vault/storage/casconfig"
	"xdao.co/vault/storage/casregistry"
	"xdao.co/vault/storage/grpccas"

	_ "xdao.co/vault/storage/localfs"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("vault-casd", pflag.ContinueOnError)
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "listen address")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "CAS backend name")
	fs.StringVar(&cfg.ConfigFile, "cas-config", cfg.ConfigFile, "CAS config file (JSON or YAML); overrides --backend")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&cfg.MaxMsgBytes, "max-msg-bytes", cfg.MaxMsgBytes, "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				fmt.Fprintln(os.Stdout, b.Name)
				continue
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return nil
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cas, closeFn, err := openCAS(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}

	opts := []grpc.ServerOption{grpc.UnaryInterceptor(logging.UnaryServerInterceptor(log))}
	if cfg.MaxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxMsgBytes), grpc.MaxSendMsgSize(cfg.MaxMsgBytes))
	}
	s := grpc.NewServer(opts...)
	grpccas.RegisterCASServer(s, &grpccas.Server{CAS: cas})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		s.GracefulStop()
	}()

	log.Info("vault-casd listening",
		zap.String("addr", lis.Addr().String()),
		zap.String("backend", cfg.Backend),
		zap.String("cas_config", cfg.ConfigFile))
	return s.Serve(lis)
}

func openCAS(cfg *config.Config) (storage.CAS, func() error, error) {
	if cfg.ConfigFile == "" {
		return casregistry.Open(cfg.Backend, casregistry.UsageDaemon)
	}
	cc, err := casconfig.LoadFile(cfg.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	return cc.Open(casregistry.UsageDaemon, "")
}
