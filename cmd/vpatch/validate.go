package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

func validateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check tree files for structural errors",
		Long: `Decode each FILE and check the tree for nodes with both text and
children, children under text or comment nodes, duplicate sibling keys
and selectors without a tag.

With --format=compact each problem is one line on stdout; with
--format=json it is one {"file", "error"} object per line. Valid
files print nothing in either mode.

Examples:
  vpatch validate pages/*.yaml
  vpatch validate --format=json page.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "compact", "json":
			default:
				return errors.Newf(errors.CategoryCLI, "unknown --format %q (want text, compact or json)", format)
			}

			w := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				v, err := readTree(path)
				if err == nil {
					err = vdom.Validate(v)
				}
				if err == nil {
					if format == "text" {
						success(w, "%s", path)
					}
					continue
				}

				failed++
				e := errors.FromError(err, "E106")
				switch format {
				case "compact":
					fmt.Fprintf(w, "%s: %s\n", path, e.FormatCompact())
				case "json":
					file, _ := json.Marshal(path)
					fmt.Fprintf(w, "{\"file\":%s,\"error\":%s}\n", file, e.FormatJSON())
				default:
					failure(w, "%s", path)
					errors.Fprint(cmd.ErrOrStderr(), e)
				}
			}
			if failed > 0 {
				return errors.Newf(errors.CategoryTree, "%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, compact or json")

	return cmd
}
