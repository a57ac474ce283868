package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/lawrencel1ng/recordio-diarizer/cmd/diarizer/internal/config"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/kv"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/storage"
)

var (
	// Global flags
	verbose   bool
	configDir string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "diarizer",
	Short: "Speaker diarization for recorded conversations",
	Long: `diarizer - Answer "who spoke when" for recorded conversations.

Recordings (PCM16 WAV, any common sample rate) are analyzed into
time-ordered speaker segments. Speaker identities are global: the same
voice keeps the same id across recordings, persisted in a local
database.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/diarizer/
  Linux:   ~/.config/diarizer/
  Windows: %AppData%/diarizer/

Examples:
  # Analyze a recording
  diarizer analyze meeting.wav

  # Re-analyze with a stable recording id
  diarizer analyze --id standup-0412 meeting.wav

  # List known speakers
  diarizer speakers list`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "override the configuration directory")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	var (
		cfg *config.Config
		err error
	)
	if configDir != "" {
		cfg, err = config.LoadFrom(configDir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		configLoadErr = err
		return
	}
	globalConfig = cfg

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// openStore opens the persistent speaker registry database.
func openStore(cfg *config.Config) (kv.Store, error) {
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: cfg.DataDir})
	if err != nil {
		return nil, fmt.Errorf("open registry database at %s: %w", cfg.DataDir, err)
	}
	return store, nil
}

// openBlobs builds the recording storage backend from configuration.
func openBlobs(ctx context.Context, cfg *config.Config) (storage.Blobs, error) {
	switch cfg.Storage.Backend {
	case "local":
		return storage.NewLocal(cfg.Storage.Root)
	case "s3":
		if cfg.Storage.Bucket == "" {
			return nil, fmt.Errorf("storage backend s3 requires a bucket")
		}
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Storage.Region),
		}
		if cfg.Storage.AccessKey != "" && cfg.Storage.SecretKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		var s3Opts []func(*awss3.Options)
		if cfg.Storage.Endpoint != "" {
			s3Opts = append(s3Opts, func(o *awss3.Options) {
				o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
				o.UsePathStyle = true
			})
		}
		client := awss3.NewFromConfig(awsCfg, s3Opts...)
		return storage.NewS3(client, cfg.Storage.Bucket, cfg.Storage.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want local or s3)", cfg.Storage.Backend)
	}
}
