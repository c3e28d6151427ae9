package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"retag/internal/logger"
	"retag/internal/parser"

	"github.com/spf13/cobra"
)

var inspectTag string

var inspectCmd = &cobra.Command{
	Use:   "inspect <link>",
	Short: "Decode a single link and show what relabeling would produce",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configured := ""
		if !cmd.Flags().Changed("tag") {
			configured = loadConfig().Tag
		}
		tag, err := resolveTag(configured, inspectTag, cmd.Flags().Changed("tag"))
		if err != nil {
			logger.Log.Fatal(err)
		}
		if err := printInspection(os.Stdout, args[0], tag); err != nil {
			os.Exit(1)
		}
	},
}

// printInspection writes the decoded fields of line, or its failure reason.
// The returned error is the decode error, if any.
func printInspection(out io.Writer, line, tag string) error {
	rec, err := parser.Parse(line, tag)
	if err != nil {
		fmt.Fprintf(out, "❌ %s\n", err)
		var de *parser.DecodeError
		if verbose && errors.As(err, &de) && de.Err != nil {
			fmt.Fprintf(out, "   cause: %v\n", de.Err)
		}
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Protocol:\t%s\n", rec.Protocol)
	fmt.Fprintf(w, "Host:\t%s\n", rec.Host)
	fmt.Fprintf(w, "Port:\t%s\n", rec.Port)
	fmt.Fprintf(w, "Original Name:\t%s\n", rec.OriginalName)
	if rec.Telegram != nil {
		fmt.Fprintf(w, "Secret:\t%s\n", rec.Telegram.Secret)
	} else {
		fmt.Fprintf(w, "Details:\t%s\n", rec.Details)
		fmt.Fprintf(w, "New Tag:\t%s\n", rec.Tag)
	}
	fmt.Fprintf(w, "Modified Link:\t%s\n", rec.ModifiedLink)
	return w.Flush()
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectTag, "tag", "t", "", "Tag to apply (default: config 'tag')")
	rootCmd.AddCommand(inspectCmd)
}
