package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tariff-engine/core/invoice"
	"tariff-engine/core/types"
	"tariff-engine/internal/config"
	"tariff-engine/internal/errors"
)

var (
	calcCode      string
	calcOrigin    string
	calcCost      string
	calcQuantity  int
	calcMaterials []string
	calcLine      int
	calcMPN       string
	calcCast      string
	calcSmelt     string
	calcFormat    string
)

// calculateCmd runs a duty calculation for one product line
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate import duties for a product",
	Long: `Calculate import duties for a product given its classification code,
country of origin, declared unit cost, and optional metal content.

Materials are declared as name=weight pairs, weight in kilograms per unit:

  tariff-engine calculate --code 8517710000 --origin TW --cost 100 \
    --material aluminum=2.5 --material copper=0.4`,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVar(&calcCode, "code", "", "classification (tariff) code (required)")
	calculateCmd.Flags().StringVar(&calcOrigin, "origin", "", "country of origin (required)")
	calculateCmd.Flags().StringVar(&calcCost, "cost", "", "declared unit cost in USD (required)")
	calculateCmd.Flags().IntVar(&calcQuantity, "quantity", 1, "number of units")
	calculateCmd.Flags().StringArrayVar(&calcMaterials, "material", nil, "declared material as name=weightKg (repeatable)")
	calculateCmd.Flags().IntVar(&calcLine, "line", 1, "invoice line number")
	calculateCmd.Flags().StringVar(&calcMPN, "mpn", "", "manufacturer part number for invoice rows")
	calculateCmd.Flags().StringVar(&calcCast, "cast", "", "cast country (defaults to origin)")
	calculateCmd.Flags().StringVar(&calcSmelt, "smelt", "", "smelt country (defaults to origin)")
	calculateCmd.Flags().StringVar(&calcFormat, "format", "table", "output format: table or json")

	calculateCmd.MarkFlagRequired("code")
	calculateCmd.MarkFlagRequired("origin")
	calculateCmd.MarkFlagRequired("cost")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	cost, err := decimal.NewFromString(calcCost)
	if err != nil {
		return errors.Inputf("invalid --cost %q: %v", calcCost, err)
	}

	materials, err := parseMaterials(calcMaterials)
	if err != nil {
		return err
	}

	eng, _, closeRepo, err := buildEngine(config.Get())
	if err != nil {
		return err
	}
	if closeRepo != nil {
		defer closeRepo()
	}

	result, err := eng.Calculate(context.Background(), types.CalculationInput{
		ClassificationCode: calcCode,
		OriginCountry:      calcOrigin,
		UnitCost:           cost,
		Materials:          materials,
		Quantity:           calcQuantity,
		LineNumber:         calcLine,
	})
	if err != nil {
		return err
	}

	rowSet := invoice.BuildRows(result, invoice.RowOptions{
		ManufacturerPartNumber: calcMPN,
		CastCountry:            calcCast,
		SmeltCountry:           calcSmelt,
	})

	if calcFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"result":       result,
			"invoice_rows": rowSet.Rows,
			"total_duties": rowSet.FormattedTotal(),
		})
	}

	printResult(result, rowSet)
	return nil
}

// parseMaterials parses repeated name=weightKg flags
func parseMaterials(raw []string) ([]types.MaterialDeclaration, error) {
	var materials []types.MaterialDeclaration
	for _, pair := range raw {
		name, weightStr, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.Inputf("invalid --material %q, expected name=weightKg", pair)
		}
		weight, err := decimal.NewFromString(weightStr)
		if err != nil {
			return nil, errors.Inputf("invalid material weight %q: %v", weightStr, err)
		}
		materials = append(materials, types.MaterialDeclaration{
			Name:     strings.TrimSpace(name),
			WeightKg: weight,
		})
	}
	return materials, nil
}

func printResult(result *types.CalculationResult, rowSet *invoice.RowSet) {
	fmt.Printf("Classification: %s  Origin: %s  Quantity: %d\n\n",
		result.Input.ClassificationCode, result.Input.OriginCountry, result.Input.Quantity)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tBASIS\tBASIS VALUE\tRATE %\tAMOUNT")
	for _, outcome := range result.Outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			outcome.ReferenceCode,
			outcome.Basis,
			outcome.BasisValue.StringFixed(2),
			outcome.RatePercent.String(),
			outcome.Amount.StringFixed(2))
	}
	w.Flush()

	fmt.Printf("\nFull value:        $%s\n", result.FullValue.StringFixed(2))
	if result.HasBasis(types.BasisMetalContentValue) {
		fmt.Printf("Metal content:     $%s (%s kg)\n",
			result.MetalContentValue.StringFixed(2), result.TotalMaterialWeightKg.String())
		fmt.Printf("Remainder value:   $%s\n", result.RemainderValue.StringFixed(2))
	}
	fmt.Printf("Total tariff:      $%s\n", result.TotalTariffAmount.StringFixed(2))
	fmt.Printf("Effective rate:    %s%%\n", result.EffectiveTariffRatePercent.StringFixed(2))
	fmt.Printf("Final landed cost: $%s\n", result.FinalLandedCost.StringFixed(2))

	if len(rowSet.Rows) > 0 {
		fmt.Printf("\nInvoice rows:\n")
		rw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(rw, "LINE\tCODE\tREFERENCES\tENTERED VALUE\tDUTY OWED")
		for _, row := range rowSet.Rows {
			fmt.Fprintf(rw, "%d\t%s\t%s\t%s\t%s\n",
				row.LineNumber,
				row.ClassificationCode,
				row.ReferenceCodes,
				row.EnteredValue.StringFixed(2),
				row.DutyOwed.StringFixed(2))
		}
		rw.Flush()
		fmt.Printf("Total duties: $%s\n", rowSet.FormattedTotal())
	}
}
