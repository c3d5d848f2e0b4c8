package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samsamfire/gotftp/pkg/client"
	"github.com/samsamfire/gotftp/pkg/config"
	"github.com/samsamfire/gotftp/pkg/message"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagServer  string
	flagPort    uint16
	flagRetries uint16
	flagTimeout uint
	flagCodec   string
	flagConfig  string
	flagDebug   bool
)

func main() {
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:           "tftp",
		Short:         "TFTP client for sending and receiving files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				log.SetLevel(log.DebugLevel)
			}
			if flagConfig == "" {
				return nil
			}
			cfg, err := config.LoadFile(flagConfig)
			if err != nil {
				return fmt.Errorf("could not load config file : %w", err)
			}
			// Flags given explicitly win over the config file
			flags := cmd.Flags()
			if !flags.Changed("server") && cfg.Server != "" {
				flagServer = cfg.Server
			}
			if !flags.Changed("port") {
				flagPort = cfg.Port
			}
			if !flags.Changed("timeout") {
				flagTimeout = cfg.Timeout
			}
			if !flags.Changed("retries") {
				flagRetries = cfg.Retries
			}
			if !flags.Changed("codec") {
				flagCodec = cfg.Codec
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "server IPv4 address")
	rootCmd.PersistentFlags().Uint16Var(&flagPort, "port", defaults.Port, "server service port")
	rootCmd.PersistentFlags().Uint16Var(&flagRetries, "retries", defaults.Retries, "max retransmissions of one message")
	rootCmd.PersistentFlags().UintVar(&flagTimeout, "timeout", defaults.Timeout, "per-wait timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&flagCodec, "codec", defaults.Codec, "wire codec : classic or proto")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "ini config file with client defaults")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	sendCmd := &cobra.Command{
		Use:   "send <local> [remote]",
		Short: "Upload a local file to the server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local := args[0]
			remote := filepath.Base(local)
			if len(args) == 2 {
				remote = args[1]
			}
			cli, err := newClient()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(local)
			if err != nil {
				return fmt.Errorf("unable to read local file : %w", err)
			}
			status := cli.Upload(data, remote)
			fmt.Println(status)
			if !status.IsOK() {
				os.Exit(1)
			}
			return nil
		},
	}

	recvCmd := &cobra.Command{
		Use:   "recv <remote> [local]",
		Short: "Download a remote file from the server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := args[0]
			local := filepath.Base(remote)
			if len(args) == 2 {
				local = args[1]
			}
			cli, err := newClient()
			if err != nil {
				return err
			}
			status, data := cli.Download(remote)
			fmt.Println(status)
			if !status.IsOK() {
				os.Exit(1)
			}
			if err := os.WriteFile(local, data, 0644); err != nil {
				return fmt.Errorf("unable to save local file : %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(sendCmd, recvCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	if flagServer == "" {
		return nil, fmt.Errorf("a server address is required (--server or config file)")
	}
	cli, err := client.NewClient(flagServer, flagPort)
	if err != nil {
		return nil, err
	}
	codec, err := message.NewCodec(flagCodec)
	if err != nil {
		return nil, err
	}
	cli.SetCodec(codec)
	cli.SetTimeout(time.Duration(flagTimeout) * time.Second)
	cli.SetMaxRetries(flagRetries)
	return cli, nil
}
