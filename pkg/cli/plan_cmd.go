package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"plumage/declarative"
	"plumage/psql"
	"plumage/retrieval"
	"plumage/sources"
)

func newPlanCmd(definitions *string) *cobra.Command {
	var factsPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the point-in-time SQL answering a fact file",
		Long: "Loads the declarative feature views, groups the PostgreSQL-backed ones " +
			"by database, and prints the generated statement per group. The facts file " +
			"is a YAML mapping of column name to a list of values.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			views, err := declarative.LoadDirectory(*definitions)
			if err != nil {
				return err
			}

			facts, err := loadFacts(factsPath)
			if err != nil {
				return err
			}

			var requests []retrieval.SourceRequest
			for _, view := range views {
				if view.Source == nil || view.Source.TypeName() != sources.TypeNamePostgreSQL {
					continue
				}
				requests = append(requests, retrieval.SourceRequest{
					Source:  view.Source,
					Request: view.Request(),
				})
			}
			if len(requests) == 0 {
				return fmt.Errorf("no PostgreSQL-backed views in %s", *definitions)
			}

			factory := psql.JobFactory(sources.TypeNamePostgreSQL, nil)
			combined, err := factory.Facts(facts, requests)
			if err != nil {
				return err
			}
			slog.Info("planned retrieval", "groups", len(combined.Jobs), "fact_rows", facts.NumRows())

			for i, job := range combined.Jobs {
				planned, ok := job.(*psql.FactualJob)
				if !ok {
					continue
				}
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("-- group %d (%d arguments)\n", i+1, len(planned.Query.Args))
				fmt.Println(planned.Query.SQL)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&factsPath, "facts", "f", "facts.yaml", "YAML file of fact columns")
	return cmd
}

func loadFacts(path string) (*retrieval.FactTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts: %w", err)
	}
	var raw map[string][]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse facts: %w", err)
	}
	facts, err := retrieval.NewFactTable(raw)
	if err != nil {
		return nil, err
	}
	if facts.NumRows() == 0 {
		return nil, fmt.Errorf("facts file %s has no rows", path)
	}
	return facts, nil
}
