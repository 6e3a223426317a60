package main

import (
	"fmt"
	"os"

	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/spf13/cobra"
)

func newSequencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sequences",
		Aliases: []string{"seq"},
		Short:   "Move presentation sequences between documents",
		Long:    `Export presentation sequences as YAML and import them into documents`,
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export <doc.json> [sequence...]",
		Short: "Export sequences as YAML",
		Long: `Write the presentation sequences of a document as YAML

Without sequence arguments every sequence is exported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.ReadFile(args[0])
			if err != nil {
				return err
			}
			seqs := doc.PresentationSequences
			if len(args) > 1 {
				seqs = nil
				for _, name := range args[1:] {
					s, err := findSequence(doc, name)
					if err != nil {
						return err
					}
					seqs = append(seqs, s)
				}
			}
			if output == "" || output == "-" {
				return store.ExportSequences(os.Stdout, seqs)
			}
			if err := store.WriteSequencesFile(output, seqs); err != nil {
				return err
			}
			fmt.Printf("Exported %d sequence(s) to %s\n", len(seqs), output)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default is stdout)")

	var target string
	importCmd := &cobra.Command{
		Use:   "import <doc.json> <sequences.yaml>",
		Short: "Import sequences from YAML",
		Long: `Merge the sequences of a YAML file into a document

Sequences with the same id or name are replaced. The document is rewritten
in place unless --output is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.ReadFile(args[0])
			if err != nil {
				return err
			}
			seqs, err := store.ReadSequencesFile(args[1])
			if err != nil {
				return err
			}
			for _, s := range seqs {
				if !s.Playable() {
					logger.Warn("sequence is not playable", "sequence", s.Name)
				}
			}
			store.MergeSequences(doc, seqs)

			for _, p := range store.Verify(doc) {
				if p.Path == nil {
					logger.Warn(p.String())
				}
			}

			if target == "" {
				target = args[0]
			}
			if err := store.WriteFile(target, doc); err != nil {
				return err
			}
			fmt.Printf("Imported %d sequence(s) into %s\n", len(seqs), target)
			return nil
		},
	}
	importCmd.Flags().StringVarP(&target, "output", "o", "", "Write to this file instead of rewriting the document")

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}
