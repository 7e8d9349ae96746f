package recommendation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ConflictCSVHeader is the header row written by WriteConflictsCSV.
var ConflictCSVHeader = []string{"productId", "productName", "ruleRecommendation", "mlRecommendation"}

// WriteConflictsCSV writes conflicts as CSV, one row per conflict.
func WriteConflictsCSV(w io.Writer, conflicts []Conflict) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ConflictCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range conflicts {
		row := []string{
			strconv.FormatInt(c.ProductID, 10),
			c.ProductName,
			string(c.RuleCategory),
			string(c.MLCategory),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for product %d: %w", c.ProductID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
