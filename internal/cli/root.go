// internal/cli/root.go
//
// Folio – contactctl root command and shared field flags.
//
//------------------------------------------------------------------------------

// Package cli implements contactctl, a terminal front end for the contact
// form.  It drives the same form.Controller the HTTP component uses, with a
// presenter that prints to the terminal instead of updating a page.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanizio/folio/internal/form"
)

// errInvalid signals a failed validation that has already been printed.
var errInvalid = errors.New("one or more fields are invalid")

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "contactctl",
		Short:         "Validate and send contact-form messages",
		Long:          "Command-line front end for the Folio contact form: validate field values or relay a message to the configured endpoint.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("form", "", "form definition YAML (default: built-in contact form)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text or json")

	rootCmd.AddCommand(newValidateCmd(), newSendCmd())
	return rootCmd
}

// fieldFlags binds one string flag per payload field.
type fieldFlags struct {
	name, email, subject, message string
}

func (f *fieldFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, form.FieldName, "", "sender name")
	cmd.Flags().StringVar(&f.email, form.FieldEmail, "", "sender email address")
	cmd.Flags().StringVar(&f.subject, form.FieldSubject, "", "message subject")
	cmd.Flags().StringVar(&f.message, form.FieldMessage, "", "message body")
}

func (f *fieldFlags) values() map[string]string {
	return map[string]string{
		form.FieldName:    f.name,
		form.FieldEmail:   f.email,
		form.FieldSubject: f.subject,
		form.FieldMessage: f.message,
	}
}

// loadDef returns the --form definition or the built-in one.
func loadDef(cmd *cobra.Command) (*form.FormDef, error) {
	path, _ := cmd.Flags().GetString("form")
	if path == "" {
		return form.ContactForm(), nil
	}
	return form.LoadFormDef(path)
}

func jsonOutput(cmd *cobra.Command) bool {
	out, _ := cmd.Flags().GetString("output")
	return out == "json"
}

func stdout(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
