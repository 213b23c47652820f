package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v4"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/draft"
	"github.com/MrJamesThe3rd/tally/internal/scan"
)

var errScanTimeout = errors.New("no barcode read before the timeout")

func (c *cli) scanCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("scan").SetParent(parent)

	var (
		image   = fs.StringLong("image", "", "decode a png or jpeg file instead of a camera")
		device  = fs.StringLong("device", "", "camera path or label (overrides SCANNER_DEVICE)")
		timeout = fs.DurationLong("timeout", 30*time.Second, "give up after this long")
		add     = fs.BoolLong("add", "add the resolved product to the list with quantity 1")
	)

	return &ff.Command{
		Name:      "scan",
		Usage:     "tally scan [--image FILE | --device PATH] [--timeout D] [--add]",
		ShortHelp: "read a barcode from the camera and look it up",
		Flags:     fs,
		Exec: c.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			session := a.Scanner

			var dev scan.Device

			switch {
			case *image != "":
				session = scan.NewSession(scan.FileCamera{Interval: 200 * time.Millisecond}, scan.NewZXingDecoder())
				defer session.Stop()

				dev = scan.Device{ID: *image, Label: *image, Path: *image}
			default:
				if *device != "" {
					a.Config.Scanner.Device = *device
				}

				picked, err := a.PickCamera(ctx)
				if err != nil {
					return err
				}

				dev = picked
				fmt.Printf("using %s (%s)\n", dev.Label, dev.Path)
			}

			code, err := readBarcode(ctx, session, dev, *timeout)
			if err != nil {
				return err
			}

			fmt.Printf("barcode: %s\n", code)

			form := draft.New(draft.Fields{Barcode: code})
			ticket := form.BeginLookup()

			res, err := a.Resolver.Resolve(ctx, code)
			if err != nil {
				return err
			}

			form.Apply(ticket, res)
			reportResolution(res)

			if !*add {
				return nil
			}

			params, err := form.Params()
			if err != nil {
				return fmt.Errorf("cannot add without name and price: %w", err)
			}

			item, err := a.Ledger.Add(ctx, params)
			if err != nil {
				return err
			}

			fmt.Printf("added %s (%s)\n", item.Name, shortID(item))

			return nil
		}),
	}
}

func readBarcode(ctx context.Context, session *scan.Session, dev scan.Device, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outcomes, err := session.Start(ctx, dev)
	if err != nil {
		return "", err
	}

	o, ok := <-outcomes
	if !ok {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errScanTimeout
		}

		return "", ctx.Err()
	}

	if o.Err != nil {
		return "", o.Err
	}

	return o.Barcode, nil
}

func (c *cli) camerasCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "cameras",
		Usage:     "tally cameras",
		ShortHelp: "list video devices and the one scan would use",
		Flags:     ff.NewFlagSet("cameras").SetParent(parent),
		Exec: c.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			devices, err := a.Cameras.ListCameras(ctx)
			if err != nil {
				return err
			}

			if len(devices) == 0 {
				return scan.ErrNoCamera
			}

			picked, err := a.PickCamera(ctx)
			if err != nil {
				return err
			}

			for _, d := range devices {
				marker := " "
				if d.Path == picked.Path {
					marker = "*"
				}

				fmt.Printf("%s %-14s %s\n", marker, d.Path, d.Label)
			}

			return nil
		}),
	}
}
