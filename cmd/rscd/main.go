package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/danmuck/rscwire/internal/logging"
	"github.com/danmuck/rscwire/internal/protocol/chat"
	"github.com/danmuck/rscwire/internal/protocol/username"
	"github.com/danmuck/rscwire/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rscd: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rscd",
		Short:         "Classic game protocol server and codec tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), usernameCmd(), chatCmd(), versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept game clients over TCP and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.ConfigureRuntime()

			cfg := server.DefaultConfig()
			if configPath != "" {
				loaded, err := loadServerConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			svc, err := server.NewService(cfg, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().
				Str("listen", cfg.ListenAddr).
				Str("http", cfg.HTTPAddr).
				Str("version", server.Version).
				Msg("rscd starting")
			return svc.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	return cmd
}

func usernameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "username",
		Short: "Convert between display names and base-37 hashes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode NAME",
			Short: "Print the base-37 hash of a display name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), username.Encode(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode HASH",
			Short: "Print the display name of a base-37 hash",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseUint(args[0], 0, 64)
				if err != nil {
					return fmt.Errorf("parse hash: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), username.Decode(v))
				return nil
			},
		},
	)
	return cmd
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Pack and unpack compressed chat text",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode TEXT...",
			Short: "Print the packed bytes of a chat message as hex",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%x\n", chat.Encode(strings.Join(args, " ")))
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode HEX",
			Short: "Print the text of a packed chat message",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				packed, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
				if err != nil {
					return fmt.Errorf("parse hex: %w", err)
				}
				text, err := chat.Decode(packed)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			},
		},
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), server.Version)
		},
	}
}
