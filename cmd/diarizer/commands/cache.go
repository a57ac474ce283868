package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show feature cache settings",
	Long: `Show the feature cache configuration.

The feature cache holds extracted per-window vectors in memory for the
duration of a run, so re-analyzing a recording in the same invocation
(for example after 'analyze a.wav a.wav' or a forced refresh) skips
audio decoding. It does not persist across invocations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		size := cfg.Engine.CacheSize
		if size == 0 {
			size = 20
		}
		fmt.Printf("capacity:  %d recordings\n", size)
		fmt.Printf("scope:     in-memory, per invocation\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}
