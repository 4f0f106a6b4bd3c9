package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/cpunion/slidegen/pkg/design"
	"github.com/cpunion/slidegen/pkg/types"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the built-in themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("search")
		themes := searchThemes(design.DefaultCatalog(), query)
		if len(themes) == 0 {
			return fmt.Errorf("no theme matches %q", query)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRIMARY\tBACKGROUND\tFONT")
		for _, t := range themes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Colors.Primary, t.Colors.Background, t.Typography.FontFamily)
		}
		return w.Flush()
	},
}

// searchThemes returns all themes, or those fuzzy-matching query best first.
func searchThemes(c *design.Catalog, query string) []types.Theme {
	all := c.All()
	if query == "" {
		return all
	}
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
	}
	matches := fuzzy.Find(query, names)
	out := make([]types.Theme, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out
}

func init() {
	rootCmd.AddCommand(themesCmd)
	themesCmd.Flags().StringP("search", "s", "", "Fuzzy search theme names")
}
