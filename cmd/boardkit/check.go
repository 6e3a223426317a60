package main

import (
	"context"
	"fmt"
	"runtime"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/boardkit/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// checkResult is the verification outcome of one document.
type checkResult struct {
	path     string
	elements int
	problems []store.Problem
	err      error
}

func newCheckCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <doc.json>...",
		Short: "Verify documents",
		Long: `Verify the integrity of one or more documents

Reports duplicate ids, nesting violations, containment cycles and stale
presentation frames. Exits non-zero when a document has errors, or
warnings too with --strict.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := checkDocuments(cmd.Context(), args)
			if err != nil {
				return err
			}
			printCheckResults(results)

			failed := 0
			for _, r := range results {
				if r.err != nil || store.HasErrors(r.problems) || (strict && len(r.problems) > 0) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) failed verification", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	return cmd
}

// checkDocuments reads and verifies the documents concurrently. Results
// keep the order of paths. A document that fails to read is a result, not
// an error; the error return is only for cancellation.
func checkDocuments(ctx context.Context, paths []string) ([]checkResult, error) {
	results := make([]checkResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := checkResult{path: path}
			doc, err := store.ReadFile(path)
			if err != nil {
				r.err = err
			} else {
				r.elements = doc.ElementCount()
				r.problems = store.Verify(doc)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printCheckResults(results []checkResult) {
	rows := [][]string{}
	for _, r := range results {
		switch {
		case r.err != nil:
			rows = append(rows, []string{r.path, "-", "unreadable", r.err.Error()})
		case len(r.problems) == 0:
			rows = append(rows, []string{r.path, fmt.Sprint(r.elements), "ok", ""})
		default:
			for _, p := range r.problems {
				rows = append(rows, []string{r.path, fmt.Sprint(r.elements), string(p.Severity), p.String()})
			}
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("DOCUMENT", "ELEMENTS", "STATUS", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			baseStyle := lipgloss.NewStyle().Padding(0, 1)

			if row == table.HeaderRow {
				return baseStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}

			if col == 2 {
				switch rows[row][col] {
				case "ok":
					return baseStyle.Foreground(lipgloss.Color("10"))
				case string(store.SeverityWarning):
					return baseStyle.Foreground(lipgloss.Color("11"))
				default:
					return baseStyle.Foreground(lipgloss.Color("9")).Bold(true)
				}
			}
			return baseStyle
		})

	fmt.Println(t.Render())
}
