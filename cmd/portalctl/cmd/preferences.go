package cmd

import (
	"fmt"

	prefshttp "clubportal/internal/preferences/adapter/http"

	"github.com/spf13/cobra"
)

var cyclePalette bool

func init() {
	paletteCmd.Flags().BoolVar(&cyclePalette, "cycle", false, "switch to the next palette")
	RootCmd.AddCommand(paletteCmd, selectedClubCmd)
}

var paletteCmd = &cobra.Command{
	Use:   "palette [name]",
	Short: "Show or change the color palette",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp prefshttp.PaletteResponse
		var err error
		switch {
		case cyclePalette:
			err = client.call("POST", "/preferences/palette/cycle", nil, &resp)
		case len(args) == 1:
			err = client.call("PUT", "/preferences/palette", prefshttp.PaletteRequest{Palette: args[0]}, &resp)
		default:
			err = client.call("GET", "/preferences/palette", nil, &resp)
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, resp)
		}
		for _, p := range resp.Palettes {
			marker := "  "
			if p == resp.Palette {
				marker = "* "
			}
			fmt.Fprintf(out, "%s%s\n", marker, p)
		}
		return nil
	},
}

var selectedClubCmd = &cobra.Command{
	Use:   "selected-club",
	Short: "Show the selected club, fixing it up against your memberships",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp prefshttp.ClubResponse
		if err := client.call("POST", "/preferences/club/reconcile", nil, &resp); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, resp)
		}
		if resp.Club == nil {
			fmt.Fprintln(out, "No club selected")
			return nil
		}
		fmt.Fprintf(out, "%s (%s)\n", resp.Club.Name, resp.Club.UID)
		return nil
	},
}
