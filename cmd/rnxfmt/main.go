// Command-line front end for the RINEX format engine: merge, split, diff,
// filter and convert observation files.
package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/de-bkg/gognss/pkg/rinex"
	"github.com/de-bkg/gognss/pkg/rinexmodel"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Version:   "v0.1.0",
		Compiled:  time.Now(),
		HelpName:  "rnxfmt",
		Usage:     "merge, split, diff, filter and convert RINEX observation files",
		ArgsUsage: "[files...]",
		Commands: []*cli.Command{
			mergeCommand(),
			splitCommand(),
			diffCommand(),
			filterCommand(),
			convertCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func readRecord(path string) (*rinexmodel.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := rinex.NewObsDecoder(f)
	if err != nil {
		return nil, err
	}
	return rinexmodel.BuildRecord(dec)
}

func writeRecord(path string, rec *rinexmodel.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return rinex.WriteObsFile(f, rec.Header, rec.Series.Epochs())
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "union two observation files into one",
		ArgsUsage: "<primary> <secondary>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "output file path"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("merge needs exactly two input files", 1)
			}
			a, err := readRecord(c.Args().Get(0))
			if err != nil {
				return err
			}
			b, err := readRecord(c.Args().Get(1))
			if err != nil {
				return err
			}
			merged, err := rinexmodel.Merge(a, b)
			if err != nil {
				return err
			}
			return writeRecord(c.String("out"), merged)
		},
	}
}

func splitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "partition an observation file at a point in time",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Required: true, Usage: "split point, RFC3339"},
			&cli.StringFlag{Name: "out1", Required: true, Usage: "output path for epochs at or before the split point"},
			&cli.StringFlag{Name: "out2", Required: true, Usage: "output path for epochs after the split point"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("split needs exactly one input file", 1)
			}
			t, err := time.Parse(time.RFC3339, c.String("at"))
			if err != nil {
				return err
			}
			rec, err := readRecord(c.Args().Get(0))
			if err != nil {
				return err
			}
			r1, r2 := rinexmodel.Split(rec, t)
			if err := writeRecord(c.String("out1"), r1); err != nil {
				return err
			}
			return writeRecord(c.String("out2"), r2)
		},
	}
}

func diffCommand() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "report per-epoch, per-satellite observable differences",
		ArgsUsage: "<file1> <file2>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("diff needs exactly two input files", 1)
			}
			a, err := readRecord(c.Args().Get(0))
			if err != nil {
				return err
			}
			b, err := readRecord(c.Args().Get(1))
			if err != nil {
				return err
			}
			for _, d := range rinexmodel.Diff(a, b) {
				log.Printf("%s %s %s: %+.4f", d.Time.Format(time.RFC3339), d.Prn, d.Code, d.DVal)
			}
			return nil
		},
	}
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:      "filter",
		Usage:     "mask and decimate an observation file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "output file path"},
			&cli.StringFlag{Name: "systems", Usage: "comma-separated system abbreviations to keep, e.g. G,R"},
			&cli.StringFlag{Name: "svs", Usage: "comma-separated PRNs to keep, e.g. G01,G02"},
			&cli.IntFlag{Name: "decimate", Usage: "keep every Nth epoch"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("filter needs exactly one input file", 1)
			}
			rec, err := readRecord(c.Args().Get(0))
			if err != nil {
				return err
			}

			var pipeline rinexmodel.Pipeline
			if s := c.String("systems"); s != "" {
				mask := rinexmodel.Filter{Kind: rinexmodel.KindMask}
				for _, abbr := range strings.Split(s, ",") {
					sys, ok := gnss.SystemByAbbr(strings.TrimSpace(abbr))
					if !ok {
						return cli.Exit("unknown system abbreviation: "+abbr, 1)
					}
					mask.Systems = append(mask.Systems, sys)
				}
				pipeline = append(pipeline, mask)
			}
			if s := c.String("svs"); s != "" {
				mask := rinexmodel.Filter{Kind: rinexmodel.KindMask}
				for _, sv := range strings.Split(s, ",") {
					prn, err := rinex.ParsePRN(strings.TrimSpace(sv))
					if err != nil {
						return err
					}
					mask.SVs = append(mask.SVs, prn)
				}
				pipeline = append(pipeline, mask)
			}
			if n := c.Int("decimate"); n > 1 {
				pipeline = append(pipeline, rinexmodel.Filter{Kind: rinexmodel.KindDecimateModulo, Modulo: n})
			}

			series, err := pipeline.Apply(rec.Series)
			if err != nil {
				return err
			}
			return writeRecord(c.String("out"), &rinexmodel.Record{Header: rec.Header, Series: series})
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "compress or decompress a RINEX observation file (Hatanaka + gzip)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compress", Usage: "Hatanaka-compress and gzip the file"},
			&cli.BoolFlag{Name: "decompress", Usage: "gunzip and Hatanaka-decompress the file"},
			&cli.BoolFlag{Name: "external-tool", Usage: "shell out to RNX2CRX/CRX2RNX instead of the built-in codec"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("convert needs exactly one input file", 1)
			}
			if c.Bool("compress") == c.Bool("decompress") {
				return cli.Exit("specify exactly one of --compress or --decompress", 1)
			}

			obsFil, err := rinex.NewObsFile(c.Args().Get(0))
			if err != nil {
				return err
			}
			obsFil.Opts.UseExternalTool = c.Bool("external-tool")

			if c.Bool("compress") {
				if err := obsFil.Compress(); err != nil {
					return err
				}
			} else {
				if err := obsFil.Decompress(); err != nil {
					return err
				}
			}
			log.Printf("wrote %s", obsFil.Path)
			return nil
		},
	}
}
