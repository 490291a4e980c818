package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winrestore/internal/platform"
)

type windowEntry struct {
	ID        string         `yaml:"id" json:"id"`
	Title     string         `yaml:"title" json:"title"`
	Rect      *platform.Rect `yaml:"rect,omitempty" json:"rect,omitempty"`
	Minimized bool           `yaml:"minimized" json:"minimized"`
	Children  []windowEntry  `yaml:"children,omitempty" json:"children,omitempty"`
}

func newWindowsCmd(opts *rootOptions) *cobra.Command {
	var (
		format   string
		children bool
	)

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List titled windows with their rectangles",
		Long: "List every titled top-level window in enumeration order. Use the titles\n" +
			"shown here as WindowTitle values in the config file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
			}
			if _, _, err := setupLogging("-", opts.logLevel, cmd.ErrOrStderr()); err != nil {
				return err
			}

			backend, err := newBackend()
			if err != nil {
				return fmt.Errorf("failed to connect to window system: %w", err)
			}
			defer backend.Close()

			return writeOutput(cmd.OutOrStdout(), format, collectWindows(backend, children))
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml, json")
	cmd.Flags().BoolVar(&children, "children", false, "Include titled descendant windows")
	return cmd
}

func collectWindows(backend platform.Backend, children bool) []windowEntry {
	entries := []windowEntry{}
	for w, err := range backend.Windows() {
		if err != nil || w.Title == "" {
			continue
		}
		entry := describeWindow(backend, w)
		if children {
			for c, err := range backend.Children(w.ID) {
				if err != nil || c.Title == "" {
					continue
				}
				entry.Children = append(entry.Children, describeWindow(backend, c))
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func describeWindow(backend platform.Backend, w platform.Window) windowEntry {
	entry := windowEntry{ID: w.ID.String(), Title: w.Title}
	if r, err := backend.WindowRect(w.ID); err == nil {
		entry.Rect = &r
	}
	if minimized, err := backend.IsMinimized(w.ID); err == nil {
		entry.Minimized = minimized
	}
	return entry
}

func writeOutput(out io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
	}
	return nil
}
