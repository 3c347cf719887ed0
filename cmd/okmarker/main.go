// Command okmarker renders and stores annotation snapshots.
//
//	okmarker render -s state.json -i photo.png -o out.png
//	okmarker svg -s state.json -o out.svg
//	okmarker rescale -s state.json --width 800 --height 600 -o scaled.json
//	okmarker store put|get|list|delete ...
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/benoitkugler/okmarker/annoconfig"
	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annoraster"
	"github.com/benoitkugler/okmarker/annostate"
	"github.com/benoitkugler/okmarker/annostore"
	"github.com/benoitkugler/okmarker/annosvg"
	"github.com/spf13/pflag"
	_ "golang.org/x/image/webp"
)

const usage = `usage: okmarker <command> [flags]

commands:
  render    draw a snapshot over its backing image, as PNG
  svg       export the markers of a snapshot as SVG
  rescale   scale a snapshot to a new canvas size
  store     put, get, list or delete snapshots in the database
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		annolog.Logger().Error().Err(err).Str("command", os.Args[1]).Msg("failed")
		fmt.Fprintln(os.Stderr, "okmarker:", err)
		os.Exit(1)
	}
}

// command holds the flags shared by every sub command.
type command struct {
	flags    *pflag.FlagSet
	settings annoconfig.Settings
}

func newCommand(name string) *command {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	annoconfig.RegisterFlags(fs)
	fs.String("config", ".", "directory containing "+annoconfig.FileName)
	return &command{flags: fs}
}

// parse reads the flags, then the settings, and installs the logger.
func (c *command) parse(args []string) error {
	if err := c.flags.Parse(args); err != nil {
		return err
	}
	dir, _ := c.flags.GetString("config")
	settings, err := annoconfig.Load(dir, c.flags)
	if err != nil {
		return err
	}
	c.settings = settings
	annolog.SetLogger(annolog.NewConsole(os.Stderr, settings.LogLevel))
	return nil
}

func run(ctx context.Context, name string, args []string) error {
	switch name {
	case "render":
		return runRender(ctx, args)
	case "svg":
		return runSVG(args)
	case "rescale":
		return runRescale(args)
	case "store":
		return runStore(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

// output returns stdout for an empty path.
func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func runRender(ctx context.Context, args []string) error {
	c := newCommand("render")
	statePath := c.flags.StringP("state", "s", "", "snapshot file (JSON)")
	backingPath := c.flags.StringP("image", "i", "", "backing image (PNG, JPEG or WebP)")
	outPath := c.flags.StringP("output", "o", "", "output PNG file (default stdout)")
	var opts annoraster.Options
	c.flags.IntVar(&opts.Width, "width", 0, "output width in pixels")
	c.flags.IntVar(&opts.Height, "height", 0, "output height in pixels")
	c.flags.BoolVar(&opts.MarkersOnly, "markers-only", false, "draw on a transparent background")
	if err := c.parse(args); err != nil {
		return err
	}
	if *statePath == "" {
		return errors.New("missing --state")
	}
	state, err := annostate.Load(*statePath)
	if err != nil {
		return err
	}
	var backing image.Image
	if *backingPath != "" {
		if backing, err = loadImage(*backingPath); err != nil {
			return err
		}
	}
	img, err := annoraster.Render(ctx, state, backing, opts)
	if err != nil {
		return err
	}
	out, err := output(*outPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	annolog.Logger().Info().Int("markers", len(state.Markers)).Str("output", *outPath).Msg("rendered")
	return out.Close()
}

func runSVG(args []string) error {
	c := newCommand("svg")
	statePath := c.flags.StringP("state", "s", "", "snapshot file (JSON)")
	outPath := c.flags.StringP("output", "o", "", "output SVG file (default stdout)")
	if err := c.parse(args); err != nil {
		return err
	}
	if *statePath == "" {
		return errors.New("missing --state")
	}
	state, err := annostate.Load(*statePath)
	if err != nil {
		return err
	}
	s := annoraster.BuildSurface(state, state.Width, state.Height)
	out, err := output(*outPath)
	if err != nil {
		return err
	}
	if err := annosvg.Write(out, s, state.Width, state.Height); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func runRescale(args []string) error {
	c := newCommand("rescale")
	statePath := c.flags.StringP("state", "s", "", "snapshot file (JSON)")
	outPath := c.flags.StringP("output", "o", "", "output snapshot file (default stdout)")
	width := c.flags.Float64("width", 0, "new canvas width")
	height := c.flags.Float64("height", 0, "new canvas height")
	if err := c.parse(args); err != nil {
		return err
	}
	if *statePath == "" {
		return errors.New("missing --state")
	}
	if *width <= 0 || *height <= 0 {
		return errors.New("--width and --height must be positive")
	}
	state, err := annostate.Load(*statePath)
	if err != nil {
		return err
	}
	scaled := annostate.Rescale(state, *width, *height)
	if *outPath != "" {
		return annostate.Save(*outPath, scaled)
	}
	return annostate.Encode(os.Stdout, scaled)
}

func runStore(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("missing store action (put, get, list, delete)")
	}
	action := args[0]
	c := newCommand("store " + action)
	statePath := c.flags.StringP("state", "s", "", "snapshot file (JSON), for put and get")
	name := c.flags.StringP("name", "n", "", "snapshot name, for put")
	id := c.flags.String("id", "", "snapshot id, for get, delete and put (update)")
	if err := c.parse(args[1:]); err != nil {
		return err
	}
	store, err := annostore.Open(c.settings.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	switch action {
	case "put":
		if *statePath == "" {
			return errors.New("missing --state")
		}
		state, err := annostate.Load(*statePath)
		if err != nil {
			return err
		}
		if *id != "" {
			return store.Update(ctx, *id, state)
		}
		newID, err := store.Save(ctx, *name, state)
		if err != nil {
			return err
		}
		fmt.Println(newID)
	case "get":
		if *id == "" {
			return errors.New("missing --id")
		}
		state, err := store.Get(ctx, *id)
		if err != nil {
			return err
		}
		if *statePath != "" {
			return annostate.Save(*statePath, state)
		}
		return annostate.Encode(os.Stdout, state)
	case "list":
		records, err := store.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSIZE\tMARKERS\tUPDATED")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%gx%g\t%d\t%s\n", r.ID, r.Name, r.Width, r.Height, r.MarkerCount,
				r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	case "delete":
		if *id == "" {
			return errors.New("missing --id")
		}
		return store.Delete(ctx, *id)
	default:
		return fmt.Errorf("unknown store action %q", action)
	}
	return nil
}
