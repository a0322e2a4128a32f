package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Wizard runs the interactive setup wizard.
// If reader is nil, reads from os.Stdin; if out is nil, writes to os.Stdout.
func Wizard(reader io.Reader, out io.Writer) error {
	if reader == nil {
		reader = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	scanner := bufio.NewScanner(reader)
	ask := func(prompt string) string {
		fmt.Fprint(out, prompt)
		scanner.Scan()
		return strings.TrimSpace(scanner.Text())
	}

	fmt.Fprintln(out, "vtab setup")
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 48))
	fmt.Fprintln(out)

	// Step 1: language
	fmt.Fprintln(out, "Step 1/3: Language")
	fmt.Fprintln(out, "  [1] English")
	fmt.Fprintln(out, "  [2] Arabic")
	fmt.Fprintln(out, "  [3] Detect from what you say")
	switch ask("  Choice: ") {
	case "2":
		viper.Set("locale", "ar")
	case "3":
		viper.Set("locale", "auto")
	default:
		viper.Set("locale", "en")
	}
	fmt.Fprintln(out)

	// Step 2: loose add
	fmt.Fprintln(out, "Step 2/3: Commands")
	fmt.Fprintln(out, "  Treat any phrase starting with \"add\" as a new row?")
	fmt.Fprintln(out, "  (\"add milk and eggs\" would become a row)")
	switch strings.ToLower(ask("  [y/N]: ")) {
	case "y", "yes":
		viper.Set("interpreter.loose_add", true)
	default:
		viper.Set("interpreter.loose_add", false)
	}
	fmt.Fprintln(out)

	// Step 3: retries
	fmt.Fprintln(out, "Step 3/3: Recognition")
	retries := ask(fmt.Sprintf("  Retries after a network error (default: %d): ", defaults["recognizer.max_retries"]))
	if retries != "" {
		n, err := strconv.Atoi(retries)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retry count %q", retries)
		}
		viper.Set("recognizer.max_retries", n)
	}
	fmt.Fprintln(out)

	if err := SaveConfig(); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}

	fmt.Fprintln(out, strings.Repeat("-", 48))
	fmt.Fprintln(out, "Try:")
	fmt.Fprintln(out, `  vtab interpret "create a table with 3 columns named Name, Age and City"`)
	fmt.Fprintln(out, "  vtab listen")
	fmt.Fprintln(out, "  vtab shell")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Config file: %s\n", ConfigPath())
	return nil
}

// WizardNonInteractive writes the defaults without asking.
func WizardNonInteractive() error {
	setDefaults()
	for k, v := range defaults {
		viper.Set(k, v)
	}
	return SaveConfig()
}
