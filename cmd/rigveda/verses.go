package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rigveda-rag/internal/location"
	"rigveda-rag/internal/models"
	"rigveda-rag/internal/query"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find verses containing text (case-insensitive)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verses, err := loadVerses(cmd)
		if err != nil {
			return err
		}
		hits := query.Search(verses, strings.Join(args, " "))
		printVerses(cmd, hits, searchLimit)
		return nil
	},
}

var listSuktas bool

var mandalaCmd = &cobra.Command{
	Use:   "mandala <mandala> [sukta]",
	Short: "Show the verses of a mandala or of one sukta",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid mandala %q", args[0])
		}
		verses, err := loadVerses(cmd)
		if err != nil {
			return err
		}

		if len(args) == 2 {
			s, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid sukta %q", args[1])
			}
			printVerses(cmd, query.BySukta(verses, m, s), 0)
			return nil
		}

		if listSuktas {
			suktas := query.Suktas(verses, m)
			fmt.Fprintf(cmd.OutOrStdout(), "Mandala %d: %d suktas\n%s\n", m, len(suktas), joinInts(suktas))
			return nil
		}
		printVerses(cmd, query.ByMandala(verses, m), 0)
		return nil
	},
}

var randomCmd = &cobra.Command{
	Use:   "random [count]",
	Short: "Show random verses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 1
		if len(args) == 1 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("invalid count %q", args[0])
			}
		}
		verses, err := loadVerses(cmd)
		if err != nil {
			return err
		}
		printVerses(cmd, query.Sample(verses, n), 0)
		return nil
	},
}

var locationCmd = &cobra.Command{
	Use:   "location <id>",
	Short: "Convert between dotted (1.1.1) and fixed-width (0100101) stanza locations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if loc, ok := location.Decode(args[0]); ok {
			fmt.Fprintln(out, loc.String())
			return nil
		}

		res, err := location.EncodeFromDotted(args[0])
		if err != nil {
			var rangeErr *location.RangeError
			if errors.As(err, &rangeErr) {
				return fmt.Errorf("%s %d is out of range (1-%d)", rangeErr.Field, rangeErr.Value, rangeErr.Max)
			}
			return err
		}
		id, ok := res.ID()
		if !ok {
			return fmt.Errorf("%q is not a stanza location", args[0])
		}
		fmt.Fprintln(out, id)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum verses to print (0 for all)")
	mandalaCmd.Flags().BoolVarP(&listSuktas, "list", "l", false, "list sukta numbers instead of verses")
}

func loadVerses(cmd *cobra.Command) (models.Corpus, error) {
	a, err := newApp(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer a.Close()

	c, err := a.store.LoadCorpus(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load verses: %w", err)
	}
	return c, nil
}

func printVerses(cmd *cobra.Command, verses []models.Verse, limit int) {
	out := cmd.OutOrStdout()
	shown := verses
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, v := range shown {
		fmt.Fprintln(out, formatVerse(v))
	}
	if len(shown) < len(verses) {
		fmt.Fprintf(out, "... %d of %d verses shown\n", len(shown), len(verses))
	} else {
		fmt.Fprintf(out, "%d verses\n", len(verses))
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}
