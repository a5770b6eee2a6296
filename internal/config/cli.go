package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packetops/opsinject/internal/ops"
)

// BindFlags registers spec.md §6's required CLI surface
// (-p/-q/-r/-w plus the positional recipe file) and the one ambient
// flag (-config) on cmd, matching the teacher's cobra-based
// cmd/gobfdctl command construction.
func BindFlags(cmd *cobra.Command) *Flags {
	f := &Flags{}
	flags := cmd.Flags()
	flags.StringVarP(&f.protocol, "proto", "p", "", "target protocol: ip, tcp or udp (required)")
	flags.Uint16VarP(&f.queueNum, "queue", "q", 0, "NFQUEUE number to bind (required)")
	flags.Uint16VarP(&f.redirectQueue, "redirect", "r", 0, "NFQUEUE number to redirect modified packets to")
	flags.BoolVarP(&f.overwrite, "overwrite", "w", false, "overwrite existing options instead of appending")
	flags.StringVar(&f.settingsPath, "config", "", "optional YAML settings file for ambient daemon options")
	return f
}

// Flags holds the raw flag values bound by BindFlags; call Resolve after
// cmd.Execute has parsed args to turn them into a validated Settings.
type Flags struct {
	protocol      string
	queueNum      uint16
	redirectQueue uint16
	overwrite     bool
	settingsPath  string
}

// Resolve parses positional args (the recipe file path) against flags,
// merges in the optional settings file and environment, and validates
// the result.
func Resolve(f *Flags, args []string) (Settings, error) {
	if len(args) != 1 {
		return Settings{}, fmt.Errorf("config: expected exactly one positional recipe file argument, got %d", len(args))
	}

	protocol, err := ops.ParseProtocol(f.protocol)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}

	s, err := Load(f.settingsPath)
	if err != nil {
		return Settings{}, err
	}

	s.Protocol = protocol
	s.QueueNum = f.queueNum
	s.Overwrite = f.overwrite
	s.RecipePath = args[0]
	if f.redirectQueue != 0 {
		redirect := f.redirectQueue
		s.RedirectQueue = &redirect
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
