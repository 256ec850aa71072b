package gotemplate_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-formbind/pkg/messages"
	"github.com/goliatone/go-formbind/pkg/render/template/gotemplate"
)

type member struct {
	Code string
}

type classes struct{}

func (classes) Code(m member) string { return m.Code }

func TestEvaluatorExpressions(t *testing.T) {
	msgs := messages.New()
	msgs.AddText("name", "is required")

	vars := map[string]any{
		"errors":   msgs,
		"cls":      classes{},
		"cdef":     member{Code: "FML"},
		"status":   "FML",
		"statuses": []any{"PRV", "FML"},
		"name":     "Ada",
		"count":    3,
	}

	evaluator := gotemplate.NewEvaluator()
	tests := []struct {
		expr string
		want any
	}{
		{expr: "name", want: "Ada"},
		{expr: `"literal"`, want: "literal"},
		{expr: `errors.Exists("name")`, want: true},
		{expr: `errors.Exists("mail")`, want: false},
		{expr: "cls.Code(cdef) == status", want: true},
		{expr: "statuses and cls.Code(cdef) in statuses", want: true},
		{expr: "missing and cls.Code(cdef) in missing", want: false},
		{expr: "count", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evaluator.Eval(tt.expr, vars)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Eval(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluatorMissingVariableIsNil(t *testing.T) {
	got, err := gotemplate.NewEvaluator().Eval("nothing.here", nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestEvaluatorErrors(t *testing.T) {
	evaluator := gotemplate.NewEvaluator()
	if _, err := evaluator.Eval("  ", nil); err != gotemplate.ErrEmptyExpression {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}
	if _, err := evaluator.Eval(`name ==`, nil); err == nil || !strings.Contains(err.Error(), "compile") {
		t.Fatalf("expected compile error, got %v", err)
	}
}

func TestEvaluatorConcurrentUse(t *testing.T) {
	evaluator := gotemplate.NewEvaluator()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := evaluator.Eval("value", map[string]any{"value": i})
			if err != nil || got != i {
				t.Errorf("Eval = %v, %v; want %d", got, err, i)
			}
		}(i)
	}
	wg.Wait()
}

func TestTruthyAndStringify(t *testing.T) {
	truthy := map[any]bool{
		nil:     false,
		"":      false,
		"x":     true,
		0:       false,
		2:       true,
		true:    true,
		false:   false,
		"False": true,
	}
	for value, want := range truthy {
		if got := gotemplate.Truthy(value); got != want {
			t.Fatalf("Truthy(%#v) = %v, want %v", value, got, want)
		}
	}
	if got := gotemplate.Truthy([]string{}); got {
		t.Fatalf("empty slice should be false")
	}

	strs := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"a", "a"},
		{true, "true"},
		{42, "42"},
		{1.5, "1.5"},
	}
	for _, tt := range strs {
		if got := gotemplate.Stringify(tt.value); got != tt.want {
			t.Fatalf("Stringify(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
