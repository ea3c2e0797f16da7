package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/formpulse/internal/form"
)

var strengthFormat = newFormatValue("text", "text", "json")

var strengthCmd = &cobra.Command{
	Use:   "strength [password]",
	Short: "Score a password the way the strength meter does",
	Long: `Score a password from 0 to 5. Without an argument the password is read from
the first line of stdin, which keeps it out of shell history.

Examples:
  formpulse strength 'Str0ng!Pass'
  echo 'Str0ng!Pass' | formpulse strength --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStrength,
}

func init() {
	rootCmd.AddCommand(strengthCmd)
	strengthCmd.Flags().VarP(strengthFormat, "format", "f", "Output format (text, json)")
}

func runStrength(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := readLine(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = line
	}

	strength, ok := form.ScoreStrength(password)
	out := cmd.OutOrStdout()
	if strengthFormat.String() == "json" {
		enc := json.NewEncoder(out)
		if !ok {
			return enc.Encode(map[string]bool{"suppressed": true})
		}
		return enc.Encode(strength)
	}

	if !ok {
		fmt.Fprintln(out, "No password given")
		return nil
	}
	bar := strings.Repeat("#", strength.Score) + strings.Repeat(".", form.MaxStrength-strength.Score)
	fmt.Fprintf(out, "[%s] %d/%d %s\n", bar, strength.Score, form.MaxStrength, strength.Label)
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
