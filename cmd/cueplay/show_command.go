package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenibako/cueplayer/model"
	"github.com/zenibako/cueplayer/show"
)

func newShowCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:         "show",
		Short:       "Show file utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	showCmd.AddCommand(newShowListCommand())
	showCmd.AddCommand(newShowExportCommand())

	return showCmd
}

// loadShow builds a show file into a cue list without runners.
func loadShow(path string) (*show.Data, *model.ListModel, error) {
	data, err := show.Load(path)
	if err != nil {
		return nil, nil, err
	}
	list := model.New()
	if err := data.Build(list, nil); err != nil {
		return nil, nil, err
	}
	return data, list, nil
}

func newShowListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <show-file>",
		Short: "Print the cues of a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, list, err := loadShow(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			name := data.Name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			fmt.Fprintf(out, "%s (%d cues)\n", name, list.Len())
			for _, c := range list.Items() {
				fmt.Fprintf(out, "%3d  %-6s %s\n", c.Index(), c.Kind(), c.Label())
			}
			return nil
		},
	}
}

func newShowExportCommand() *cobra.Command {
	var outputPath string
	var compact bool

	cmd := &cobra.Command{
		Use:   "export <show-file>",
		Short: "Write a show with defaults filled in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, list, err := loadShow(args[0])
			if err != nil {
				return err
			}

			exported := show.FromModel(data.Name, list)
			if outputPath == "" {
				text, err := show.ToJSON(exported.Name, exported.Cues, !compact)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			if err := show.Save(outputPath, exported); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cues to %s\n", len(exported.Cues), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON without indentation")
	return cmd
}
