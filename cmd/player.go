package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerStatus prints the current playback state.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	state, err := player.PlaybackState(ctx)
	if err != nil {
		return r.playerErr(err)
	}

	if state == nil {
		r.writePlain("Nothing playing\n")
		return nil
	}

	status := "⏸ Paused"
	if state.IsPlaying {
		status = "▶ Playing"
	}

	artist := ""
	if len(state.Item.Artists) > 0 {
		artist = state.Item.Artists[0].Name + " - "
	}

	r.writePlain("%s  %s%s\n", status, artist, state.Item.Name)
	if state.Item.Album.Name != "" {
		r.writePlain("Album: %s\n", state.Item.Album.Name)
	}
	r.writePlain("Position: %s / %s\n",
		shared.FormatDuration(state.ProgressMS/1000),
		shared.FormatDuration(state.Item.DurationMS/1000))
	if state.Device.Name != "" {
		r.writePlain("Device: %s (volume %d%%)\n", state.Device.Name, state.Device.VolumePercent)
	}
	if state.ShuffleState {
		r.writePlain("Shuffle: on\n")
	}
	if state.RepeatState != "" && state.RepeatState != "off" {
		r.writePlain("Repeat: %s\n", state.RepeatState)
	}

	return nil
}

// PlayerDevices lists the available Connect devices.
func (r *Runner) PlayerDevices(ctx context.Context, cmd *cli.Command) error {
	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	devices, err := player.Devices(ctx)
	if err != nil {
		return r.playerErr(err)
	}

	if len(devices) == 0 {
		r.writePlain("No devices found. Open Spotify on a device first.\n")
		return nil
	}

	r.writePlain("Devices:\n\n")
	for i, device := range devices {
		active := ""
		if device.IsActive {
			active = " (active)"
		}
		r.writePlain("%d. %s [%s]%s\n", i+1, device.Name, device.Type, active)
		r.writePlain("   Volume: %d%%\n", device.VolumePercent)
	}

	return nil
}

// PlayerPlay starts or resumes playback.
//
// With no flags it resumes the current context; --context plays a playlist,
// album, or artist; --uri plays specific tracks.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	contextURI := cmd.String("context")
	uris := cmd.StringSlice("uri")

	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	if err := player.Play(ctx, contextURI, uris); err != nil {
		return r.playerErr(err)
	}

	r.writePlain("▶ Playing\n")
	return nil
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	if err := player.Pause(ctx); err != nil {
		return r.playerErr(err)
	}

	r.writePlain("⏸ Paused\n")
	return nil
}

// PlayerNext skips to the next track.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	if err := player.Next(ctx); err != nil {
		return r.playerErr(err)
	}

	r.writePlain("⏭ Skipped\n")
	return nil
}

// PlayerPrevious skips to the previous track.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	if err := player.Previous(ctx); err != nil {
		return r.playerErr(err)
	}

	r.writePlain("⏮ Skipped back\n")
	return nil
}

// PlayerSeek seeks within the current track to a position in seconds.
func (r *Runner) PlayerSeek(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("seconds")
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: seconds must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	if err := player.Seek(ctx, seconds*1000); err != nil {
		return r.playerErr(err)
	}

	r.writePlain("✓ Seeked to %s\n", shared.FormatDuration(seconds))
	return nil
}

// PlayerVolume sets the active device's volume.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("percent")
	percent, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: percent must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	if err := player.SetVolume(ctx, percent); err != nil {
		return r.playerErr(err)
	}

	r.writePlain("✓ Volume set to %d%%\n", percent)
	return nil
}

// PlayerQueue adds a track to the playback queue.
func (r *Runner) PlayerQueue(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: track URI argument is required", shared.ErrMissingArgument)
	}

	player, err := r.openPlayer()
	if err != nil {
		return err
	}

	if err := player.Queue(ctx, uri); err != nil {
		return r.playerErr(err)
	}

	r.writePlain("✓ Queued\n")
	return nil
}

// playerErr maps playback failures onto actionable messages.
func (r *Runner) playerErr(err error) error {
	if errors.Is(err, shared.ErrNoActiveDevice) {
		r.writePlain("✗ No active device. Open Spotify somewhere, then check: spx player devices\n")
		return err
	}
	if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrAPIRequest) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}
