// Package upload implements the upload command.
package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/share"
)

// Register registers the upload handler.
func Register(reg *root.Registry) {
	reg.Register("upload", runUpload)
}

func runUpload(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("file")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}

	workDir, err := root.ResolveWorkDir(ctx)
	if err != nil {
		return err
	}
	sharing, err := config.LoadSharing(workDir)
	if err != nil {
		return err
	}

	name := sharing.DefaultService
	if ctx.Cmd.IsSet("service") {
		name = ctx.Cmd.String("service")
	}
	svc, err := share.ParseService(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Uploading %s to %s...\n", path, svc)

	res, err := share.Upload(ctx.Context, path, svc, share.Credentials{
		ImgurClientID: sharing.ImgurClientID,
		GiphyAPIKey:   sharing.GiphyAPIKey,
	})
	if err != nil {
		var credErr *share.CredentialError
		if errors.As(err, &credErr) {
			if cfgPath, pathErr := appdirs.GlobalConfigPath(); pathErr == nil {
				return fmt.Errorf("%w (set it in %s)", err, cfgPath)
			}
		}
		return err
	}

	fmt.Fprintf(ctx.Out, "Uploaded!\n\nURL: %s\n", res.URL)
	if res.DeleteHash != "" {
		fmt.Fprintf(ctx.Out, "Delete hash: %s\n", res.DeleteHash)
	}
	if res.EmbedURL != "" {
		fmt.Fprintf(ctx.Out, "Embed: %s\n", res.EmbedURL)
	}

	if ctx.Cmd.Bool("copy") {
		if err := clipboard.WriteAll(res.URL); err != nil {
			slog.Warn("upload: clipboard unavailable", slog.Any("err", err))
			fmt.Fprintf(ctx.ErrOut, "warning: could not copy URL to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(ctx.Out, "URL copied to clipboard")
		}
	}
	return nil
}
