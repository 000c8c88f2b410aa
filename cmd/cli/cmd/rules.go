package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tariff-engine/adapters/rulefile"
	"tariff-engine/adapters/storage"
	"tariff-engine/internal/config"
)

// rulesCmd administers the duty rule store
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Administer the duty rule store",
}

// rulesListCmd lists stored rules
var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored duty rules and their lines",
	RunE:  runRulesList,
}

// rulesImportCmd imports an HCL rule file into the store
var rulesImportCmd = &cobra.Command{
	Use:   "import <file.hcl>",
	Short: "Import duty rules from an HCL file into the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesImport,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesImportCmd)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(config.Get().Repository.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ruleset, err := store.ListRules(context.Background())
	if err != nil {
		return err
	}
	if len(ruleset) == 0 {
		fmt.Println("No rules stored. Import some with: tariff-engine rules import <file.hcl>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tCODE\tORIGIN\tKIND\tACTIVE\tLINES")
	for _, rule := range ruleset {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%d\n",
			rule.RuleNumber, rule.ClassificationCode, rule.OriginCountry,
			rule.Kind, rule.IsActive, len(rule.Lines))
		for _, line := range rule.Lines {
			fmt.Fprintf(w, "  %s\t%s%%\t%s\t%s\t%t\t\n",
				line.ReferenceCode, line.RatePercent.String(), line.Basis, line.Description, line.IsActive)
		}
	}
	return w.Flush()
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	ruleset, err := rulefile.Load(args[0])
	if err != nil {
		return err
	}

	store, err := storage.Open(config.Get().Repository.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Seed(context.Background(), ruleset); err != nil {
		return err
	}

	fmt.Printf("Imported %d rules from %s\n", len(ruleset), args[0])
	return nil
}
