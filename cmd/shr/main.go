package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"os"

	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v2"

	"github.com/bodgit/shr"
	shrimage "github.com/bodgit/shr/image"
)

// The 320 mode has non-square pixels; stretching by 1.2 before the
// final resize keeps circles round on a real monitor.
const defaultAspect = 1.2

type preset struct {
	dither   string
	quantize string
	filter   string
}

var presets = map[string]preset{
	"photo":     {"atkinson", "per-scanline", "lanczos"},
	"pixel-art": {"none", "per-scanline", "nearest"},
	"line-art":  {"atkinson", "per-scanline", "lanczos"},
}

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func resampleFilter(name string) (imaging.ResampleFilter, error) {
	switch name {
	case "lanczos":
		return imaging.Lanczos, nil
	case "linear":
		return imaging.Linear, nil
	case "nearest":
		return imaging.NearestNeighbor, nil
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resize filter %q", name)
	}
}

// loadImage decodes and resizes the source image to exactly 320x200,
// optionally stretching it first to correct the pixel aspect ratio.
func loadImage(path string, aspect float64, filter string) (image.Image, error) {
	rf, err := resampleFilter(filter)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	if aspect != 1.0 {
		m = imaging.Resize(m, int(shrimage.Width*aspect+0.5), shrimage.Height, rf)
	}
	return imaging.Resize(m, shrimage.Width, shrimage.Height, rf), nil
}

func writePreview(path string, buf []byte) error {
	m, err := shrimage.Decode(bytes.NewReader(buf))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, m)
}

func main() {
	app := cli.NewApp()

	app.Name = "shr"
	app.Usage = "Apple IIgs Super Hi-Res image converter"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert an image to .3200 format",
			Description: "Reads any PNG, JPEG or GIF image, resizes it to 320x200 and writes a 32768 byte .3200 file.",
			ArgsUsage:   "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "dither",
					Aliases: []string{"d"},
					Value:   "atkinson",
					Usage:   "dithering algorithm (none, ordered, floyd-steinberg, atkinson, jjn, stucki, burkes, sierra, sierra2, sierra-lite)",
				},
				&cli.StringFlag{
					Name:    "quantize",
					Aliases: []string{"q"},
					Value:   "per-scanline",
					Usage:   "palette strategy (per-scanline, global, optimized)",
				},
				&cli.Float64Flag{
					Name:  "error-threshold",
					Value: shr.DefaultErrorThreshold,
					Usage: "scanline error below which the optimized strategy reuses a palette",
				},
				&cli.Float64Flag{
					Name:    "aspect",
					Aliases: []string{"a"},
					Value:   defaultAspect,
					Usage:   "horizontal aspect ratio correction",
				},
				&cli.StringFlag{
					Name:    "filter",
					Aliases: []string{"r"},
					Value:   "lanczos",
					Usage:   "resize filter (lanczos, linear, nearest)",
				},
				&cli.BoolFlag{
					Name:  "no-linear",
					Usage: "work in gamma-encoded sRGB instead of linear RGB",
				},
				&cli.StringFlag{
					Name:    "preview",
					Aliases: []string{"p"},
					Usage:   "write a PNG preview of the converted image to `PATH`",
				},
				&cli.StringFlag{
					Name:  "preset",
					Usage: "preset configuration (photo, pixel-art, line-art)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := log.New(ioutil.Discard, "", 0)
				if c.Bool("verbose") {
					logger.SetOutput(os.Stderr)
				}

				cfg := shr.Config{
					Dither:         c.String("dither"),
					Quantize:       c.String("quantize"),
					ErrorThreshold: c.Float64("error-threshold"),
					LinearRGB:      !c.Bool("no-linear"),
				}
				filter := c.String("filter")

				if name := c.String("preset"); name != "" {
					p, ok := presets[name]
					if !ok {
						return cli.NewExitError(fmt.Errorf("unknown preset %q", name), 1)
					}
					cfg.Dither, cfg.Quantize, filter = p.dither, p.quantize, p.filter
				}

				m, err := loadImage(c.Args().First(), c.Float64("aspect"), filter)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				buf, err := shr.New(logger).Convert(m, cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := ioutil.WriteFile(c.Args().Get(1), buf, 0644); err != nil {
					return cli.NewExitError(err, 1)
				}

				if preview := c.String("preview"); preview != "" {
					if err := writePreview(preview, buf); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Display palette usage of a .3200 file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				buf, err := ioutil.ReadFile(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				raw, err := shrimage.Parse(buf)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("%s: %dx%d, %d bytes\n", c.Args().First(), shrimage.Width, shrimage.Height, len(buf))
				fmt.Printf("palettes referenced: %d/16\n", raw.ReferencedPalettes())
				for id, n := range raw.PaletteUsage() {
					if n > 0 {
						fmt.Printf("  palette %2d: %3d scanlines\n", id, n)
					}
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
