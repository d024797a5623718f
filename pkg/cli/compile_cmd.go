package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plumage/declarative"
	"plumage/domain"
)

func newCompileCmd(definitions, output *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Compile declarative feature views and print their shape",
		RunE: func(cmd *cobra.Command, _ []string) error {
			views, err := declarative.LoadDirectory(*definitions)
			if err != nil {
				return err
			}
			slog.Info("compiled feature views", "count", len(views), "dir", *definitions)

			if *output == "json" {
				return printViewsJSON(views)
			}
			return printViewsTable(views)
		},
	}
}

type compiledColumn struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Role  string `json:"role"`
	Depth int    `json:"depth,omitempty"`
}

type compiledViewOut struct {
	Name    string           `json:"name"`
	Source  string           `json:"source,omitempty"`
	Columns []compiledColumn `json:"columns"`
}

func viewOutput(view *declarative.FeatureView) compiledViewOut {
	out := compiledViewOut{Name: view.Compiled.Location.Name}
	if view.Source != nil {
		out.Source = view.Source.JobGroupKey()
	}
	for _, entity := range view.Compiled.Entities {
		out.Columns = append(out.Columns, compiledColumn{Name: entity.Name, Type: string(entity.DType), Role: "entity"})
	}
	for _, feature := range view.Compiled.Features {
		out.Columns = append(out.Columns, compiledColumn{Name: feature.Name, Type: string(feature.DType), Role: "feature"})
	}
	for _, derived := range view.Compiled.DerivedFeatures {
		out.Columns = append(out.Columns, compiledColumn{Name: derived.Name, Type: string(derived.DType), Role: "derived", Depth: derived.Depth})
	}
	if ts := view.Compiled.EventTimestamp; ts != nil {
		out.Columns = append(out.Columns, compiledColumn{Name: ts.Name, Type: string(domain.TypeDatetime), Role: "event_timestamp"})
	}
	return out
}

func printViewsJSON(views []*declarative.FeatureView) error {
	outputs := make([]compiledViewOut, len(views))
	for i, view := range views {
		outputs[i] = viewOutput(view)
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(outputs)
}

func printViewsTable(views []*declarative.FeatureView) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VIEW\tCOLUMN\tTYPE\tROLE\tDEPTH")
	for _, view := range views {
		out := viewOutput(view)
		for _, column := range out.Columns {
			depth := ""
			if column.Role == "derived" {
				depth = fmt.Sprintf("%d", column.Depth)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", out.Name, column.Name, column.Type, column.Role, depth)
		}
	}
	return w.Flush()
}
