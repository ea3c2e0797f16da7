package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/formpulse/internal/form"
)

// errInvalidSubmission makes the command exit non-zero after the report is
// printed.
var errInvalidSubmission = errors.New("submission is invalid")

var (
	validateFile   string
	validateLang   string
	validateFormat = newFormatValue("text", "text", "json")
	validateInput  form.Submission
	validateAge    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a registration submission without a browser",
	Long: `Validate a registration submission with the same rules the page uses.

Values come from a YAML file or from flags; flags override the file.

Examples:
  formpulse validate --file signup.yml
  formpulse validate --email ada@example.com --age 36 --format json
  formpulse validate --file signup.yml --lang es`,
	Args: cobra.NoArgs,
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	f := validateCmd.Flags()
	f.StringVar(&validateFile, "file", "", "YAML file holding the submission")
	f.StringVar(&validateLang, "lang", "", "Message language (default form.language)")
	f.VarP(validateFormat, "format", "f", "Output format (text, json)")
	f.StringVar(&validateInput.FullName, "full-name", "", "Full name")
	f.StringVar(&validateInput.Email, "email", "", "Email address")
	f.StringVar(&validateInput.Phone, "phone", "", "Phone number")
	f.StringVar(&validateInput.Password, "password", "", "Password")
	f.StringVar(&validateInput.ConfirmPassword, "confirm-password", "", "Password confirmation")
	f.StringVar(&validateAge, "age", "", "Age")
	f.BoolVar(&validateInput.Terms, "terms", false, "Terms accepted")
	AddFlagValidation(validateCmd, "file", ValidateFileExists)
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sub, err := buildSubmission(cmd)
	if err != nil {
		return err
	}

	lang := validateLang
	if lang == "" {
		lang = cfg.Form.Language
	}
	report := form.Check(sub, form.NewRules(form.NewCatalog(lang)))

	if err := writeReport(cmd.OutOrStdout(), report, validateFormat.String()); err != nil {
		return err
	}
	if !report.Valid {
		return errInvalidSubmission
	}
	return nil
}

// buildSubmission reads --file and then applies any flag that was set.
func buildSubmission(cmd *cobra.Command) (form.Submission, error) {
	var sub form.Submission
	if validateFile != "" {
		data, err := os.ReadFile(validateFile)
		if err != nil {
			return sub, fmt.Errorf("failed to read %s: %w", validateFile, err)
		}
		if err := yaml.Unmarshal(data, &sub); err != nil {
			return sub, fmt.Errorf("invalid YAML in %s: %w", validateFile, err)
		}
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("full-name", &sub.FullName, validateInput.FullName)
	override("email", &sub.Email, validateInput.Email)
	override("phone", &sub.Phone, validateInput.Phone)
	override("password", &sub.Password, validateInput.Password)
	override("confirm-password", &sub.ConfirmPassword, validateInput.ConfirmPassword)
	if flags.Changed("age") {
		sub.Age = form.FlexString(validateAge)
	}
	if flags.Changed("terms") {
		sub.Terms = validateInput.Terms
	}
	return sub, nil
}

func writeReport(w io.Writer, report form.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, name := range form.FieldNames() {
		res := report.Fields[name]
		if res.Valid {
			fmt.Fprintf(w, "  ok   %-16s\n", name)
		} else {
			fmt.Fprintf(w, "  FAIL %-16s %s\n", name, res.Message)
		}
	}
	if report.Valid {
		fmt.Fprintln(w, "Submission is valid")
	} else {
		fmt.Fprintf(w, "%d of %d fields are invalid\n", len(report.Invalid()), len(form.FieldNames()))
	}
	return nil
}
