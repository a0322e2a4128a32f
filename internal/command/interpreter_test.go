package command

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestInterpretCreateTable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		template string
	}{
		{"basic", "create a table with 3 columns named Name, Age, City", []string{"Name", "Age", "City"}, "create-table"},
		{"extra names truncated", "Create a table with 2 columns named Name, Age, City", []string{"Name", "Age"}, "create-table"},
		{"fewer names not padded", "make table with 5 columns named A and B", []string{"A", "B"}, "make-table"},
		{"singular column", "new table with 1 column named Score", []string{"Score"}, "new-table"},
		{"oxford and", "create a table with 3 columns named Name, Age, and City", []string{"Name", "Age", "City"}, "create-table"},
		{"and inside names", "um so create a table with 2 columns named Brand, Sandy", []string{"Brand", "Sandy"}, "create-table"},
		{"trailing period", "Create a table with 3 columns named Name, Age, City.", []string{"Name", "Age", "City"}, "create-table"},
		{"colon after named", "create a table with 2 columns named: Id, Title", []string{"Id", "Title"}, "create-table"},
		{"count inferred", "create a table with columns named Name, Age", []string{"Name", "Age"}, "create-table-inferred"},
		{"huge count", "create a table with 99999999999999999999999 columns named A", []string{"A"}, "create-table"},
		{"arabic", "إنشاء جدول بـ 3 أعمدة بأسماء الاسم، العمر، المدينة", []string{"الاسم", "العمر", "المدينة"}, "create-table-ar"},
		{"arabic-indic digits", "إنشاء جدول بـ ٢ أعمدة بأسماء الاسم، العمر، المدينة", []string{"الاسم", "العمر"}, "create-table-ar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Interpret(tt.input)
			if cmd.Kind != CreateTable {
				t.Fatalf("Interpret(%q).Kind = %s, want create", tt.input, cmd.Kind)
			}
			if got := cmd.Names(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("names = %q, want %q", got, tt.want)
			}
			if cmd.Template != tt.template {
				t.Errorf("template = %q, want %q", cmd.Template, tt.template)
			}
		})
	}
}

func TestInterpretAddRow(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"basic", "add a row: John, 25, Delhi", []string{"John", "25", "Delhi"}},
		{"no article", "add row: John, 25", []string{"John", "25"}},
		{"insert", "insert a row: a, b", []string{"a", "b"}},
		{"new row", "new row: only", []string{"only"}},
		{"empty entries dropped", "add a row: John, , 25,,", []string{"John", "25"}},
		{"and separator", "add a row: X AND Y", []string{"X", "Y"}},
		{"and inside values", "add a row: Brandy and Sandy, Android", []string{"Brandy", "Sandy", "Android"}},
		{"arabic comma", "add a row: John، 25، Delhi", []string{"John", "25", "Delhi"}},
		{"arabic", "إضافة صف: أحمد، 25، الرياض، ahmed@gmail.com، 30000", []string{"أحمد", "25", "الرياض", "ahmed@gmail.com", "30000"}},
		{"keeps email dots", "add a row: john@gmail.com, 3.5.", []string{"john@gmail.com", "3.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Interpret(tt.input)
			if cmd.Kind != AddRow {
				t.Fatalf("Interpret(%q).Kind = %s, want add", tt.input, cmd.Kind)
			}
			if !reflect.DeepEqual(cmd.Values, tt.want) {
				t.Errorf("values = %q, want %q", cmd.Values, tt.want)
			}
		})
	}
}

func TestInterpretUnknown(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"what's the weather",
		"create a table with 0 columns named ",
		"create a table with 0 columns named A, B",
		"create a table with 3 columns named , , ,",
		"add row: ,  , ",
		"recreate a table with 2 columns named A, B",
		"add milk and eggs",
	}
	for _, in := range inputs {
		if cmd := Interpret(in); cmd.Kind != Unknown {
			t.Errorf("Interpret(%q) = %s, want unknown", in, cmd)
		}
	}
}

func TestInterpretCaseInsensitive(t *testing.T) {
	upper := Interpret("CREATE A TABLE WITH 2 COLUMNS NAMED Name, Age")
	lower := Interpret("create a table with 2 columns named Name, Age")
	if !reflect.DeepEqual(upper, lower) {
		t.Errorf("upper = %+v, lower = %+v", upper, lower)
	}
	if got := upper.Names(); !reflect.DeepEqual(got, []string{"Name", "Age"}) {
		t.Errorf("casing of names not preserved: %q", got)
	}
}

func TestSeparatorEquivalence(t *testing.T) {
	a := Interpret("add a row: X and Y")
	b := Interpret("add a row: X, Y")
	if !reflect.DeepEqual(a.Values, b.Values) {
		t.Errorf("%q != %q", a.Values, b.Values)
	}
	if !reflect.DeepEqual(a.Values, []string{"X", "Y"}) {
		t.Errorf("values = %q", a.Values)
	}
}

func TestCreateRoundTrip(t *testing.T) {
	first := Interpret("create a table with 4 columns named  Name ,Age,, and City , Email")
	joined := strings.Join(first.Names(), ", ")
	if joined != "Name, Age, City, Email" {
		t.Fatalf("joined = %q", joined)
	}
	second := Interpret("create a table with 4 columns named " + joined)
	if !reflect.DeepEqual(first.Names(), second.Names()) {
		t.Errorf("re-parse changed names: %q -> %q", first.Names(), second.Names())
	}
}

func TestStrictTemplateWinsOverInferred(t *testing.T) {
	cmd := Interpret("new table with 2 columns named A, B, C")
	if cmd.Template != "new-table" {
		t.Errorf("template = %q, want new-table", cmd.Template)
	}
	if len(cmd.Columns) != 2 {
		t.Errorf("columns = %d, want 2", len(cmd.Columns))
	}
}

func TestCreateBeatsAddInSameUtterance(t *testing.T) {
	cmd := Interpret("add a row please no wait create a table with 1 column named Total")
	if cmd.Kind != CreateTable {
		t.Fatalf("kind = %s, want create", cmd.Kind)
	}
	if cmd.Columns[0].Name != "Total" {
		t.Errorf("column = %q", cmd.Columns[0].Name)
	}
}

// The loose fallback turns ordinary speech into rows. It stays off by
// default and these cases document why.
func TestLooseAddMisclassifies(t *testing.T) {
	strict := New()
	loose := New(WithLooseAdd(true))

	if cmd := strict.Interpret("add milk, eggs"); cmd.Kind != Unknown {
		t.Errorf("strict interpreter accepted loose add: %s", cmd)
	}

	cmd := loose.Interpret("add milk, eggs")
	if cmd.Kind != AddRow || cmd.Template != "add-loose" {
		t.Fatalf("loose interpreter = %+v", cmd)
	}
	if !reflect.DeepEqual(cmd.Values, []string{"milk", "eggs"}) {
		t.Errorf("values = %q", cmd.Values)
	}

	chatter := loose.Interpret("add some sugar to my coffee")
	if chatter.Kind != AddRow {
		t.Errorf("expected chatter to be misread as a row, got %s", chatter)
	}

	// Explicit templates still win when both could apply.
	if got := loose.Interpret("add a row: a, b"); got.Template != "add-row" {
		t.Errorf("template = %q, want add-row", got.Template)
	}
}

func TestWithTemplatesKeepsKindOrder(t *testing.T) {
	build := Template{
		Name:    "build-table",
		Kind:    CreateTable,
		Keyword: "build",
		Pattern: mustCompile(t, `(?is)\bbuild\s+(?:a\s+)?table\s+named[:\s]+(.+)`),
		Extract: createInferred,
	}
	in := New(WithTemplates(build), WithLooseAdd(true))

	templates := in.Templates()
	seenAdd := false
	for _, tpl := range templates {
		if tpl.Kind == AddRow {
			seenAdd = true
		}
		if tpl.Kind == CreateTable && seenAdd {
			t.Fatalf("create template %q ordered after an add template", tpl.Name)
		}
	}
	if last := templates[len(templates)-1]; last.Name != "add-loose" {
		t.Errorf("last template = %q, want add-loose", last.Name)
	}

	cmd := in.Interpret("Build a table named Sku, Price")
	if cmd.Template != "build-table" || !reflect.DeepEqual(cmd.Names(), []string{"Sku", "Price"}) {
		t.Errorf("custom template result = %+v", cmd)
	}
}

func TestCommandJSON(t *testing.T) {
	data, err := json.Marshal(Interpret("add row: a, b"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"add","values":["a","b"],"template":"add-row"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var back Command
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Kind != AddRow {
		t.Errorf("kind = %s", back.Kind)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{"٣", 3, true},
		{"۴", 4, true},
		{"1x", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCount(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseCount(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewCreateTableEmpty(t *testing.T) {
	if cmd := NewCreateTable(nil); cmd.Recognized() {
		t.Errorf("empty create should be unknown, got %s", cmd)
	}
	if cmd := NewAddRow([]string{}); cmd.Recognized() {
		t.Errorf("empty add should be unknown, got %s", cmd)
	}
}
