package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)
	color.NoColor = true

	root := &cobra.Command{Use: "vtab", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().Bool("json", false, "")
	root.PersistentFlags().String("lang", "", "")
	root.AddCommand(NewCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"shell"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestShellEval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.md")
	out, err := run(t,
		"--eval", "create a table with 2 columns named Name, Age",
		"--eval", "add a row: Asha, 31",
		"--eval", "show",
		"--eval", "export "+path,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	for _, want := range []string{"Table created with 2 columns", "Asha", "Table exported to"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "| Asha | 31 |") {
		t.Errorf("markdown export:\n%s", data)
	}
}

func TestShellEvalLang(t *testing.T) {
	out, err := run(t,
		"--eval", "lang ar",
		"--eval", "create a table with 1 column named A",
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "تم إنشاء الجدول") {
		t.Errorf("session messages should follow lang:\n%s", out)
	}
}

func TestShellEvalPendingUtterance(t *testing.T) {
	out, err := run(t, "--eval", "create a table")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `Transcript: "create a table"`) {
		t.Errorf("pending utterance not shown:\n%s", out)
	}
}

func TestShellEvalClearResetsUtterance(t *testing.T) {
	out, err := run(t,
		"--eval", "create a table",
		"--eval", "clear",
		"--eval", "with 2 columns named Name, Age",
	)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "Table created") {
		t.Errorf("speech before clear should be discarded:\n%s", out)
	}
	if !strings.Contains(out, `Transcript: "with 2 columns named Name, Age"`) {
		t.Errorf("pending utterance should start after clear:\n%s", out)
	}
}

func TestShellEvalFatal(t *testing.T) {
	out, err := run(t, "--eval", "!error not-supported")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out, "not supported") {
		t.Errorf("missing localized error:\n%s", out)
	}
}
