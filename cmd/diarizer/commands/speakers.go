package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/diarize/identity"
)

var speakersCmd = &cobra.Command{
	Use:   "speakers",
	Short: "Inspect and maintain the global speaker registry",
}

// withRegistry opens the registry database and runs fn against it.
func withRegistry(fn func(ctx context.Context, reg *identity.Registry) error) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), identity.New(store, 0, slog.Default()))
}

var speakersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known speakers and analyzed recordings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, reg *identity.Registry) error {
			sigs := reg.Speakers(ctx)
			if len(sigs) == 0 {
				fmt.Println("no speakers registered")
				return nil
			}

			ids := make([]uint64, 0, len(sigs))
			for id := range sigs {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			fmt.Println(styles.Header.Render("SPEAKERS"))
			for _, id := range ids {
				fmt.Printf("  #%d %s\n", id,
					styles.Dim.Render(fmt.Sprintf("(%d-dim signature)", len(sigs[id]))))
			}

			recs, err := reg.Recordings(ctx)
			if err != nil {
				return err
			}
			if len(recs) > 0 {
				fmt.Println(styles.Header.Render("RECORDINGS"))
				for _, r := range recs {
					fmt.Printf("  %s\n", r)
				}
			}
			return nil
		})
	},
}

var speakersResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all speakers and recording maps",
	Long: `Delete every speaker signature, the id counter, and all
per-recording speaker maps. This is irreversible and the only way
speaker ids are ever reused.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, reg *identity.Registry) error {
			if err := reg.Reset(ctx); err != nil {
				return err
			}
			fmt.Println("registry reset")
			return nil
		})
	},
}

var speakersExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the registry to a backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, reg *identity.Registry) error {
			data, err := reg.Export(ctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return err
			}
			fmt.Printf("exported %d bytes to %s\n", len(data), args[0])
			return nil
		})
	},
}

var speakersImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the registry with a previously exported backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, reg *identity.Registry) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := reg.Import(ctx, data); err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			fmt.Println("registry imported")
			return nil
		})
	},
}

func init() {
	speakersCmd.AddCommand(speakersListCmd)
	speakersCmd.AddCommand(speakersResetCmd)
	speakersCmd.AddCommand(speakersExportCmd)
	speakersCmd.AddCommand(speakersImportCmd)
	rootCmd.AddCommand(speakersCmd)
}
