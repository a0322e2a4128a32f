package command

import (
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Interpreter classifies transcripts against an ordered template table.
type Interpreter struct {
	templates []Template
	spotter   *goahocorasick.Machine
}

// Option configures an Interpreter.
type Option func(*options)

type options struct {
	looseAdd bool
	extra    []Template
}

// WithLooseAdd enables the permissive "add {list}" fallback, tried after
// every other template.
func WithLooseAdd(enabled bool) Option {
	return func(o *options) { o.looseAdd = enabled }
}

// WithTemplates registers additional templates, e.g. another phrasing or
// locale. They are tried after the built-in templates of the same kind.
func WithTemplates(t ...Template) Option {
	return func(o *options) { o.extra = append(o.extra, t...) }
}

// New builds an Interpreter from the default templates plus any options.
func New(opts ...Option) *Interpreter {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	templates := append(DefaultTemplates(), o.extra...)
	sort.SliceStable(templates, func(i, j int) bool {
		return kindRank(templates[i].Kind) < kindRank(templates[j].Kind)
	})
	if o.looseAdd {
		templates = append(templates, looseAdd)
	}

	return &Interpreter{
		templates: templates,
		spotter:   buildSpotter(templates),
	}
}

var defaultInterpreter = New()

// Interpret classifies transcript with the default template table.
func Interpret(transcript string) Command {
	return defaultInterpreter.Interpret(transcript)
}

// Templates returns the template table in the order it is tried.
func (in *Interpreter) Templates() []Template {
	return append([]Template(nil), in.templates...)
}

// Interpret maps a transcript to a Command. It never fails: anything that
// matches no template, or matches one with an empty list, is Unknown.
func (in *Interpreter) Interpret(transcript string) Command {
	text := strings.TrimSpace(transcript)
	if text == "" {
		return Command{Kind: Unknown}
	}

	present := in.spot(text)
	for _, t := range in.templates {
		if present != nil && t.Keyword != "" && !present[t.Keyword] {
			continue
		}
		m := t.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cmd := t.Extract(m)
		if !cmd.Recognized() {
			continue
		}
		cmd.Template = t.Name
		return cmd
	}
	return Command{Kind: Unknown}
}

// spot returns the set of template keywords found in text, or nil when
// keyword spotting is unavailable and every template must be tried.
func (in *Interpreter) spot(text string) map[string]bool {
	if in.spotter == nil {
		return nil
	}
	found := make(map[string]bool)
	for _, term := range in.spotter.MultiPatternSearch([]rune(strings.ToLower(text)), false) {
		found[string(term.Word)] = true
	}
	return found
}

func buildSpotter(templates []Template) *goahocorasick.Machine {
	keywords := lo.Uniq(lo.FilterMap(templates, func(t Template, _ int) (string, bool) {
		return t.Keyword, t.Keyword != ""
	}))
	if len(keywords) == 0 {
		return nil
	}
	sort.Strings(keywords)

	m := new(goahocorasick.Machine)
	if err := m.Build(lo.Map(keywords, func(k string, _ int) []rune { return []rune(k) })); err != nil {
		return nil
	}
	return m
}

func kindRank(k Kind) int {
	switch k {
	case CreateTable:
		return 0
	case AddRow:
		return 1
	}
	return 2
}
