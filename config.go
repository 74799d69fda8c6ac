/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	catalog       string
	chatMaxLength int
	eventBurst    int
	eventRate     float64
	port          int
	prefix        string
	profile       bool
	roomTimeout   time.Duration
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool
	voteWindow    time.Duration
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.roomTimeout < 0 {
		return fmt.Errorf("invalid room timeout (must not be negative): %s", c.roomTimeout)
	}
	if c.voteWindow < 0 {
		return fmt.Errorf("invalid vote window (must not be negative): %s", c.voteWindow)
	}
	if c.eventRate < 0 {
		return fmt.Errorf("invalid event rate (must not be negative): %v", c.eventRate)
	}
	if c.eventRate > 0 && c.eventBurst < 1 {
		return fmt.Errorf("invalid event burst (must be at least 1 when rate limiting): %d", c.eventBurst)
	}
	if c.chatMaxLength < 1 {
		return fmt.Errorf("invalid chat max length (must be positive): %d", c.chatMaxLength)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LUNCHVOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "lunchvote",
		Short:         "Pick a restaurant together: shared rooms, swipe votes, live leaderboard and chat.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: LUNCHVOTE_BIND)")
	fs.StringVar(&cfg.catalog, "catalog", "", "path to restaurant catalog json, embedded sample if unset (env: LUNCHVOTE_CATALOG)")
	fs.IntVar(&cfg.chatMaxLength, "chat-max-length", 500, "maximum chat message length in characters (env: LUNCHVOTE_CHAT_MAX_LENGTH)")
	fs.IntVar(&cfg.eventBurst, "event-burst", 20, "burst of inbound events allowed per connection (env: LUNCHVOTE_EVENT_BURST)")
	fs.Float64Var(&cfg.eventRate, "event-rate", 10, "inbound events per second allowed per connection, 0 to disable (env: LUNCHVOTE_EVENT_RATE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: LUNCHVOTE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: LUNCHVOTE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: LUNCHVOTE_PROFILE)")
	fs.DurationVar(&cfg.roomTimeout, "room-timeout", 6*time.Hour, "time before rooms with nobody online are dropped, 0 to keep forever (env: LUNCHVOTE_ROOM_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: LUNCHVOTE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: LUNCHVOTE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: LUNCHVOTE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: LUNCHVOTE_VERSION)")
	fs.DurationVar(&cfg.voteWindow, "vote-window", 30*time.Minute, "voting closes this long after a room's session start, 0 to leave it to clients (env: LUNCHVOTE_VOTE_WINDOW)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("lunchvote v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
