package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/buildsys/brickgen/internal/building"
	"github.com/buildsys/brickgen/internal/encoding"
	"github.com/buildsys/brickgen/internal/storage"
	"github.com/buildsys/brickgen/pkg/rdf"
	"github.com/buildsys/brickgen/pkg/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the site graph and write it to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.runGenerate(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("output", "o", "example.ttl", "Output file")
	cmd.Flags().StringP("format", "f", "turtle", "Output format (turtle, ntriples)")
	cmd.Flags().String("site", "", "Site description (YAML); the example building when empty")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [file.ttl]",
		Short: "Save a Turtle file, or the generated site, into the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return a.runLoad(cmd.OutOrStdout(), input)
		},
	}

	cmd.Flags().String("db", "./brickgen_data", "Path where the database files will be placed")
	cmd.Flags().String("site", "", "Site description (YAML) used when no file is given")
	return cmd
}

func (a *app) dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the stored graph to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.runDump(cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("db", "./brickgen_data", "Path of an existing database")
	cmd.Flags().StringP("format", "f", "turtle", "Output format (turtle, ntriples)")
	return cmd
}

func (a *app) runGenerate(out io.Writer) error {
	g, err := a.siteGraph()
	if err != nil {
		return err
	}

	if err := g.WriteFile(a.cfg.Output, a.cfg.Format); err != nil {
		return err
	}

	a.log.Info().
		Str("path", a.cfg.Output).
		Str("format", string(a.cfg.Format)).
		Int("triples", g.Len()).
		Msg("Wrote graph")
	summary(out, "Wrote %d triples to %s", g.Len(), a.cfg.Output)
	return nil
}

func (a *app) runLoad(out io.Writer, input string) error {
	var (
		g   *store.Graph
		err error
	)
	start := time.Now()
	if input != "" {
		g, err = store.ReadTurtleFile(input)
	} else {
		g, err = a.siteGraph()
	}
	if err != nil {
		return err
	}
	a.log.Debug().
		Int("triples", g.Len()).
		Int("namespaces", len(g.Namespaces())).
		Dur("took", time.Since(start)).
		Msg("Built graph")

	disk, err := a.openDiskStore()
	if err != nil {
		return err
	}
	defer disk.Close()

	if err := disk.Save(g); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	if err := a.verify(disk, g); err != nil {
		return err
	}

	a.log.Info().Str("db", a.cfg.DB).Int("triples", g.Len()).Msg("Saved graph")
	summary(out, "Loaded %d triples into %s", g.Len(), a.cfg.DB)
	return nil
}

func (a *app) runDump(out io.Writer) error {
	if _, err := os.Stat(a.cfg.DB); err != nil {
		return fmt.Errorf("no database at %s: %w", a.cfg.DB, err)
	}

	disk, err := a.openDiskStore()
	if err != nil {
		return err
	}
	defer disk.Close()

	g, err := disk.Load()
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	a.log.Debug().Str("db", a.cfg.DB).Int("triples", g.Len()).Msg("Loaded graph")

	return g.Write(out, a.cfg.Format)
}

// verify reads the snapshot back and checks it holds exactly the saved statements
func (a *app) verify(disk *store.DiskStore, g *store.Graph) error {
	stored, err := disk.Load()
	if err != nil {
		return fmt.Errorf("failed to read back graph: %w", err)
	}
	if rdf.AreGraphsIsomorphic(g.Triples(), stored.Triples()) {
		return nil
	}

	missing, extra := rdf.Diff(g.Triples(), stored.Triples())
	for _, triple := range missing {
		a.log.Warn().Str("triple", triple.String()).Msg("Missing from snapshot")
	}
	for _, triple := range extra {
		a.log.Warn().Str("triple", triple.String()).Msg("Unexpected in snapshot")
	}
	return fmt.Errorf("snapshot in %s differs from graph: %d missing, %d unexpected", a.cfg.DB, len(missing), len(extra))
}

// siteGraph builds the graph of the configured site
func (a *app) siteGraph() (*store.Graph, error) {
	model, err := building.Load(a.cfg.Site)
	if err != nil {
		return nil, err
	}
	if a.cfg.Site == "" {
		a.log.Debug().Msg("Using the example site")
	}
	return model.Graph()
}

func (a *app) openDiskStore() (*store.DiskStore, error) {
	badgerStorage, err := storage.NewBadgerStorage(a.cfg.DB, storage.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	return store.NewDiskStore(badgerStorage, encoding.NewTermEncoder(), encoding.NewTermDecoder()), nil
}

func summary(out io.Writer, format string, args ...interface{}) {
	c := color.New(color.FgCyan)
	c.Add(color.Bold)
	c.Fprintf(out, "✓ ")
	fmt.Fprintf(out, format+"\n", args...)
}
