package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/cli"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/diarize"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/storage"
)

var (
	analyzeID    string
	analyzeForce bool
)

var styles = cli.NewStyles(cli.DefaultTheme)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <recording.wav> [more.wav ...]",
	Short: "Analyze recordings and print speaker segments",
	Long: `Analyze one or more recordings and print who spoke when.

Each recording is read from the configured storage backend (local
filesystem by default), so paths are backend paths: plain file paths
for local storage, object keys for s3.

Speaker ids are global and persistent: re-analyzing a recording, or
analyzing another recording with the same voices, yields the same ids.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeID != "" && len(args) > 1 {
			return fmt.Errorf("--id is only valid with a single recording")
		}

		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		blobs, err := openBlobs(ctx, cfg)
		if err != nil {
			return err
		}

		d, err := diarize.New(store,
			diarize.WithBlobs(blobs),
			diarize.WithConfig(diarize.Config{
				WindowSeconds:  cfg.Engine.WindowSeconds,
				MaxSpeakers:    cfg.Engine.MaxSpeakers,
				MatchThreshold: cfg.Engine.MatchThreshold,
				CacheSize:      cfg.Engine.CacheSize,
			}),
		)
		if err != nil {
			return err
		}
		defer d.Close()

		for _, path := range args {
			id := analyzeID
			if id == "" {
				id, err = contentID(ctx, blobs, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}

			segs, err := d.Process(ctx, diarize.Request{
				RecordingID:  id,
				Path:         path,
				ForceRefresh: analyzeForce,
				OnProgress: func(p float64) {
					fmt.Fprintf(os.Stderr, "\r%s %3.0f%%", path, p*100)
				},
			})
			fmt.Fprint(os.Stderr, "\r"+strings.Repeat(" ", len(path)+6)+"\r")
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if len(args) > 1 {
				fmt.Println(styles.Header.Render(path))
			}
			printSegments(segs)
		}
		return nil
	},
}

func printSegments(segs []diarize.Segment) {
	fmt.Printf("%s  %s  %s  %s\n",
		styles.Header.Render(pad("SPEAKER", 8)),
		styles.Header.Render(pad("START", 9)),
		styles.Header.Render(pad("END", 9)),
		styles.Header.Render(pad("CONF", 5)))

	for _, s := range segs {
		note := ""
		if s.Overlap {
			note = "  " + styles.Dim.Render("overlap")
		}
		speaker := fmt.Sprintf("#%d", s.SpeakerID)
		if s.SpeakerID == 0 {
			speaker = "none"
		}
		fmt.Printf("%s  %s  %s  %s%s\n",
			styles.Strong.Render(pad(speaker, 8)),
			pad(formatOffset(s.Start), 9),
			pad(formatOffset(s.End), 9),
			pad(fmt.Sprintf("%.2f", s.Confidence), 5),
			note)
	}
}

// contentID derives a stable opaque recording id from the audio bytes,
// so a moved or renamed file keeps its identity and an edited file does
// not reuse a stale one.
func contentID(ctx context.Context, blobs storage.Blobs, path string) (string, error) {
	rc, err := blobs.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)[:16]), nil
}

// formatOffset renders a time offset as m:ss.t.
func formatOffset(d time.Duration) string {
	tenths := d.Milliseconds() / 100
	return fmt.Sprintf("%d:%04.1f", tenths/600, float64(tenths%600)/10)
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeID, "id", "", "stable recording id (defaults to a hash of the audio)")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "re-extract features, bypassing the cache")
	rootCmd.AddCommand(analyzeCmd)
}
