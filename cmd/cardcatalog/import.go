package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/cardcatalog/internal/adapters/repository"
)

var errEmptySet = errors.New("set file has no name")

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <set.yaml>...",
		Short: "Load official sets from YAML files",
		Long: `Load official sets from YAML files. Each file holds one or more documents:

  name: Base Game
  cards:
    - text: "Why can't I sleep at night? _"
      black: true
    - text: "A sassy black woman."

Importing the same file again adds nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			var sets []repository.SetImport
			for _, path := range args {
				loaded, err := readSetFile(path)
				if err != nil {
					return err
				}
				sets = append(sets, loaded...)
			}

			ctx := cmd.Context()
			svc := newService(cfg)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = svc.Stop() }()

			for _, set := range sets {
				row, added, err := svc.ImportSet(ctx, set)
				if err != nil {
					return fmt.Errorf("importing %q: %w", set.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (set %d): %d of %d cards added\n", row.Name, row.ID, added, len(set.Cards))
			}
			return nil
		},
	}
}

// readSetFile decodes every YAML document in path as a set.
func readSetFile(path string) ([]repository.SetImport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading set file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sets []repository.SetImport
	for {
		var set repository.SetImport
		err := dec.Decode(&set)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if set.Name == "" {
			return nil, fmt.Errorf("%s: %w", path, errEmptySet)
		}
		sets = append(sets, set)
	}
	return sets, nil
}
