package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fmueller/vidtranslate/internal/config"
	"github.com/fmueller/vidtranslate/internal/platform"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newListCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List candidate videos in the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := app.newSelector().List(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no %s files in %s\n", app.cfg.Paths.VideoExtension, app.cfg.Paths.InputDirectory)
			}
			return nil
		},
	}
}

func newExtractCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <video-file>",
		Short: "Extract the audio track of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !fileExists(args[0]) {
				return fmt.Errorf("video file not found: %s", args[0])
			}

			extractFn := app.extractFn
			if extractFn == nil {
				extractFn = app.extractAudio
			}

			ctx, cancel := app.withTimeout(cmd.Context())
			defer cancel()

			audioPath, err := extractFn(ctx, args[0])
			if err != nil {
				return err
			}
			if !fileExists(audioPath) {
				app.log().Error("failed to split audio from video clip", zap.String("audio", audioPath))
				return ErrNoAudio
			}
			fmt.Fprintln(cmd.OutOrStdout(), audioPath)
			return nil
		},
	}
}

func newTranslateCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <audio-file>",
		Short: "Translate an audio file and save the text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !fileExists(args[0]) {
				return fmt.Errorf("audio file not found: %s", args[0])
			}

			translateFn := app.translateFn
			if translateFn == nil {
				translateFn = app.translateAndSave
			}

			ctx, cancel := app.withTimeout(cmd.Context())
			defer cancel()

			savedPath, err := translateFn(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), savedPath)
			return nil
		},
	}
}

func newConfigCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
		Args:  cobra.NoArgs,
		// The file may not exist yet, so skip the root's config loading.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app.setupIO(cmd)
			return nil
		},
	}
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigInitCmd(app *appState) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := platform.ResolveConfigPath(app.configPath)
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists; use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("check config file %s: %w", path, err)
			}

			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			app.log().Info("config written", zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
