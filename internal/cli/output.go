package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/madfam-org/ticketbooth/pkg/types"
)

// printTokens renders value as JSON or YAML, or rows as a table.
func printTokens(w io.Writer, format string, value interface{}, rows []types.Token) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return printTokenTable(w, rows, time.Now())
	}
}

func printTokenTable(w io.Writer, tokens []types.Token, now time.Time) error {
	if len(tokens) == 0 {
		_, err := fmt.Fprintln(w, "No active tokens")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tSCOPES\tTOKEN\tCREATED\tEXPIRES\tREMAINING")
	for _, token := range tokens {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			token.ID,
			token.UserID,
			strings.Join(token.Scopes, ","),
			token.Token,
			token.CreatedAt,
			token.ExpiresAt,
			remaining(token.ExpiresAt, now))
	}
	return tw.Flush()
}

// remaining renders the time left before expiresAt, rounded to the second.
func remaining(expiresAt string, now time.Time) string {
	t, err := types.ParseTimestamp(expiresAt)
	if err != nil {
		return "-"
	}
	left := t.Sub(now)
	if left <= 0 {
		return "expired"
	}
	return left.Round(time.Second).String()
}
