package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var translateJSON bool

var translateCmd = &cobra.Command{
	Use:   "translate <location>",
	Short: "Fetch a stanza with its translations from VedaWeb",
	Long: `Fetches one stanza from the VedaWeb API. The location may be dotted
(1.1.1, 1-1-1, 1_1_1) or fixed-width (0100101).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := &app{}
		doc, err := a.vedaweb().FetchDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if translateJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatDocument(doc))
		return nil
	},
}

var audioCmd = &cobra.Command{
	Use:   "audio <mandala>",
	Short: "List recitation recordings for a mandala",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid mandala %q", args[0])
		}

		a := &app{}
		files, err := a.audio().ListMandala(cmd.Context(), m)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range files {
			fmt.Fprintf(out, "%d.%-4d v%d  %s\n", f.Mandala, f.Sukta, f.Version, f.URL)
		}
		fmt.Fprintf(out, "%d recordings\n", len(files))
		return nil
	},
}

func init() {
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "print the raw document as JSON")
}
