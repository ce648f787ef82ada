package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChaseRain/carouselgen/internal/catalog"
)

func (c *CLI) catalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the palettes and intentions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printCatalog()
		},
	}
}

func (c *CLI) printCatalog() error {
	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PALETTE\tBACKGROUND\tTEXT\tPRIMARY\tSECONDARY\tACCENT")
	for _, p := range catalog.Palettes() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Name,
			catalog.Hex(p.Background),
			catalog.Hex(p.Text),
			catalog.Hex(p.Primary),
			catalog.Hex(p.Secondary),
			catalog.Hex(p.Accent),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(c.Out)
	fmt.Fprintln(c.Out, "INTENTIONS")
	for _, name := range catalog.Intentions() {
		fmt.Fprintln(c.Out, name)
	}
	return nil
}
