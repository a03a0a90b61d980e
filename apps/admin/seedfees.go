package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/fee"
)

// seedFees configures fee assignments for a (year, term) from TYPE=AMOUNT
// pairs. Existing assignments are left alone; duplicates are reported.
func (cli *commandLine) seedFees(year, term, fees, level string) error {
	ctx := context.Background()

	for _, pair := range strings.Split(fees, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("malformed fee %q; want TYPE=AMOUNT", pair)
		}
		feeType := core.CleanString(parts[0])
		amount, err := core.ParseAmount(parts[1])
		if err != nil {
			return fmt.Errorf("fee %q: %v", feeType, err)
		}

		a, err := cli.feeSvc.CreateAssignment(ctx, fee.NewAssignment{
			AcademicYear: year,
			Term:         term,
			FeeType:      feeType,
			Amount:       amount,
			Level:        level,
		})
		if err != nil {
			return fmt.Errorf("fee %q: %v", feeType, err)
		}
		logger.Printf("created %s %s %s: %s (%s)", a.AcademicYear, a.Term, a.FeeType, core.FormatAmount(a.Amount), a.Level)
	}
	return nil
}
