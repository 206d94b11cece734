package mcpserver

import (
	"fmt"

	"github.com/starford/hoursheet/internal/models"
)

// ColumnContract describes how the hours sheet must be laid out for search
// and totals to work, using the configured column names.
func ColumnContract(cols models.Columns) string {
	return fmt.Sprintf(`# Hours Sheet Column Contract

The first row (or the column labels of a visualization response) names the
columns. Every column is shown in results; three of them carry meaning.

| Column | Role |
|--------|------|
| %[1]q | Employee code. Matched by search. |
| %[2]q | Employee name. Matched by search. |
| %[3]q | Hours. Summed into the results total. |

## Rules

1. Column names are matched exactly, including case and spaces.
2. Search is a case-insensitive substring match against code OR name.
   Surrounding whitespace in the term is ignored; an empty term matches nothing.
3. %[3]q values are read like a decimal number prefix: "7.5" and "7.5h"
   count as 7.5, blank or non-numeric values count as 0.
4. The total is printed with two decimals, for example "Total %[3]s Found: 7.50".
5. Rows in a CSV source with neither a code nor a name are ignored.
`, cols.Code, cols.Name, cols.Hours)
}
