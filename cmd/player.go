package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/livesync/internal/formatter"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Fragment fetches the markup at a path and prints it, as text unless --raw is set.
func (r *Runner) Fragment(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	body, err := r.page.Load(ctx, path)
	if err != nil {
		return err
	}

	if cmd.Bool("raw") {
		return r.writePlain("%s\n", body)
	}
	return r.writePlain("%s\n", formatter.PlainText(string(body)))
}

func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	return r.playerDone("play", r.page.Play(ctx))
}

func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	return r.playerDone("pause", r.page.Pause(ctx))
}

func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	return r.playerDone("next", r.page.Next(ctx))
}

func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	return r.playerDone("previous", r.page.Previous(ctx))
}

// PlayerVolume sets the volume. Values outside 0-100 are clamped.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(cmd.StringArg("level"))
	if raw == "" {
		return fmt.Errorf("%w: level", shared.ErrMissingArgument)
	}
	level, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: level %q", shared.ErrInvalidArgument, raw)
	}
	return r.playerDone(fmt.Sprintf("volume %d%%", formatter.ClampVolume(level)), r.page.SetVolume(ctx, level))
}

// PlayerSeek moves playback to a position given in milliseconds.
func (r *Runner) PlayerSeek(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("position")
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: position", shared.ErrMissingArgument)
	}
	ms, err := formatter.ParsePosition(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}
	return r.playerDone("seek "+formatter.FormatPosition(ms), r.page.SetPosition(ctx, ms))
}

// PlayerSkipTo jumps to a queue entry by zero-based index.
func (r *Runner) PlayerSkipTo(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(cmd.StringArg("index"))
	if raw == "" {
		return fmt.Errorf("%w: index", shared.ErrMissingArgument)
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return fmt.Errorf("%w: index %q", shared.ErrInvalidArgument, raw)
	}
	return r.playerDone(fmt.Sprintf("skip to %d", index), r.page.SkipTo(ctx, index))
}

func (r *Runner) PlayerPlayTrack(ctx context.Context, cmd *cli.Command) error {
	id, err := trackID(cmd.StringArg("track-id"))
	if err != nil {
		return err
	}
	return r.playerDone(fmt.Sprintf("play track %d", id), r.page.PlayTrack(ctx, id))
}

// PlayerTrack applies a favorite or queue action to a track.
func (r *Runner) PlayerTrack(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("action")
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: action", shared.ErrMissingArgument)
	}
	action, ok := models.ParseTrackAction(raw)
	if !ok {
		return fmt.Errorf("%w: action %q", shared.ErrInvalidArgument, raw)
	}
	id, err := trackID(cmd.StringArg("track-id"))
	if err != nil {
		return err
	}
	return r.playerDone(fmt.Sprintf("%s %d", action, id), r.page.Favorite(ctx, id, action, cmd.Int("queue-index")))
}

func trackID(raw string) (uint32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: track-id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: track-id %q", shared.ErrInvalidArgument, raw)
	}
	return uint32(id), nil
}

func (r *Runner) playerDone(action string, err error) error {
	if err != nil {
		return fmt.Errorf("%s failed: %w", action, err)
	}
	r.logger.Debug("player command sent", "action", action)
	return r.writePlain("✓ %s\n", action)
}
