package command

import (
	"math"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Template is one phrase pattern. Templates are tried in priority order and
// the first one whose Extract returns a recognized command wins.
type Template struct {
	Name string
	Kind Kind
	// Keyword is a lower-case word every match of Pattern contains. An empty
	// Keyword disables keyword spotting for the template.
	Keyword string
	Pattern *regexp.Regexp
	Extract func(match []string) Command
}

// listSeparator splits spoken lists. The connective only splits when it is
// delimited on both sides, so names like "Brand" stay whole.
var listSeparator = regexp.MustCompile(`(?i)[,،\s]+(?:and|و)\s+|[,،]\s*`)

// sentenceEnd is the terminal punctuation speech engines append to a final result.
const sentenceEnd = ".!?؟。"

var createTemplates = []Template{
	{
		Name:    "create-table",
		Kind:    CreateTable,
		Keyword: "table",
		Pattern: regexp.MustCompile(`(?is)\bcreate\s+(?:a\s+)?table\s+with\s+(\d+)\s+columns?\s+named[:\s]+(.+)`),
		Extract: createWithCount,
	},
	{
		Name:    "make-table",
		Kind:    CreateTable,
		Keyword: "table",
		Pattern: regexp.MustCompile(`(?is)\bmake\s+(?:a\s+)?table\s+with\s+(\d+)\s+columns?\s+named[:\s]+(.+)`),
		Extract: createWithCount,
	},
	{
		Name:    "new-table",
		Kind:    CreateTable,
		Keyword: "table",
		Pattern: regexp.MustCompile(`(?is)\bnew\s+table\s+with\s+(\d+)\s+columns?\s+named[:\s]+(.+)`),
		Extract: createWithCount,
	},
	{
		Name:    "create-table-ar",
		Kind:    CreateTable,
		Keyword: "جدول",
		Pattern: regexp.MustCompile(`(?s)(?:إنشاء|انشاء|أنشئ|انشئ)\s+جدول\s+(?:بـ|ب)?\s*([0-9٠-٩۰-۹]+)\s+(?:أعمدة|اعمدة|أعمده|عمود)\s+(?:بأسماء|باسماء)[:\s]+(.+)`),
		Extract: createWithCount,
	},
	{
		Name:    "create-table-inferred",
		Kind:    CreateTable,
		Keyword: "table",
		Pattern: regexp.MustCompile(`(?is)\b(?:(?:create|make)\s+(?:a\s+)?|new\s+)table\s+with\s+columns?\s+named[:\s]+(.+)`),
		Extract: createInferred,
	},
}

var addTemplates = []Template{
	{
		Name:    "add-row",
		Kind:    AddRow,
		Keyword: "row",
		Pattern: regexp.MustCompile(`(?is)\badd\s+(?:a\s+)?row[:,\s]+(.+)`),
		Extract: addRow,
	},
	{
		Name:    "insert-row",
		Kind:    AddRow,
		Keyword: "row",
		Pattern: regexp.MustCompile(`(?is)\binsert\s+(?:a\s+)?row[:,\s]+(.+)`),
		Extract: addRow,
	},
	{
		Name:    "new-row",
		Kind:    AddRow,
		Keyword: "row",
		Pattern: regexp.MustCompile(`(?is)\bnew\s+row[:,\s]+(.+)`),
		Extract: addRow,
	},
	{
		Name:    "add-row-ar",
		Kind:    AddRow,
		Keyword: "صف",
		Pattern: regexp.MustCompile(`(?s)(?:إضافة|اضافة|أضف|اضف)\s+صف[:،,\s]+(.+)`),
		Extract: addRow,
	},
}

// looseAdd accepts "add {list}". It also swallows ordinary speech such as
// "add some milk", so it only runs when explicitly enabled.
var looseAdd = Template{
	Name:    "add-loose",
	Kind:    AddRow,
	Keyword: "add",
	Pattern: regexp.MustCompile(`(?is)\badd[:\s]+(.+)`),
	Extract: addRow,
}

// DefaultTemplates returns the built-in templates in priority order: every
// create-table template before any add-row template, explicit counts before
// inferred ones. The loose add fallback is not included.
func DefaultTemplates() []Template {
	out := make([]Template, 0, len(createTemplates)+len(addTemplates))
	out = append(out, createTemplates...)
	return append(out, addTemplates...)
}

// SplitList splits a spoken list on commas (ASCII or Arabic) and on a
// delimited "and", trimming pieces and dropping empty ones.
func SplitList(s string) []string {
	s = strings.TrimRight(strings.TrimSpace(s), sentenceEnd)
	return lo.FilterMap(listSeparator.Split(s, -1), func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
}

func createWithCount(m []string) Command {
	names := SplitList(m[2])
	if n, ok := parseCount(m[1]); ok && n < len(names) {
		names = names[:n]
	}
	return NewCreateTable(names)
}

func createInferred(m []string) Command {
	return NewCreateTable(SplitList(m[1]))
}

func addRow(m []string) Command {
	return NewAddRow(SplitList(m[1]))
}

// parseCount reads ASCII, Arabic-Indic and Extended Arabic-Indic digits.
// Counts too large for an int saturate.
func parseCount(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 {
			return 0, false
		}
		if n > (math.MaxInt-d)/10 {
			return math.MaxInt, true
		}
		n = n*10 + d
	}
	return n, true
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= '٠' && r <= '٩':
		return int(r - '٠')
	case r >= '۰' && r <= '۹':
		return int(r - '۰')
	}
	return -1
}
