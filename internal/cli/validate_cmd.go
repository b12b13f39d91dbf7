// internal/cli/validate_cmd.go
//
// Folio – `contactctl validate`: print one verdict per field.
//
// Context
//   Runs the Field Validator only.  Exit status is 1 when any field fails,
//   which makes the command usable from shell scripts.
//
//------------------------------------------------------------------------------

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/folio/internal/form"
)

func newValidateCmd() *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check field values without sending anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := loadDef(cmd)
			if err != nil {
				return err
			}
			verdicts := form.ValidateAll(def, ff.values())
			if err := printVerdicts(cmd, verdicts); err != nil {
				return err
			}
			for _, v := range verdicts {
				if !v.Valid {
					return errInvalid
				}
			}
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}

func printVerdicts(cmd *cobra.Command, verdicts []form.Verdict) error {
	w := stdout(cmd)
	if jsonOutput(cmd) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(verdicts)
	}
	for _, v := range verdicts {
		if v.Valid {
			_, _ = fmt.Fprintf(w, "✓ %-8s ok\n", v.Field)
		} else {
			_, _ = fmt.Fprintf(w, "✗ %-8s %s\n", v.Field, v.Message)
		}
	}
	return nil
}
