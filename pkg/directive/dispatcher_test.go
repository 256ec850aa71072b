package directive_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/token"
)

func newDispatcher(t *testing.T, opts ...directive.Option) *directive.Dispatcher {
	t.Helper()
	opts = append([]directive.Option{directive.WithClassifications(memberStatus(t))}, opts...)
	d, err := directive.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func el(tag string, kv ...string) *directive.Element {
	attrs := make([]directive.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, directive.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return directive.NewElement(tag, attrs...)
}

func process(t *testing.T, d *directive.Dispatcher, e *directive.Element, scope *directive.Scope) directive.RewriteResult {
	t.Helper()
	if scope == nil {
		scope = &directive.Scope{TemplatePath: "test.html", Stack: directive.NewIterationStack()}
	}
	res, err := d.Process(context.Background(), e, scope)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	return res
}

func attrs(kv ...string) []directive.Attribute {
	out := make([]directive.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, directive.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func TestPropertyByElement(t *testing.T) {
	d := newDispatcher(t)
	classappend := `errors.Exists("name") ? "validError"`

	tests := []struct {
		name string
		el   *directive.Element
		want []directive.Attribute
	}{
		{
			name: "text input",
			el:   el("input", "type", "text", "fg:property", "name"),
			want: attrs("tpl:name", `"name"`, "tpl:value", "name", "tpl:classappend", classappend),
		},
		{
			name: "checkbox has no value",
			el:   el("input", "type", "checkbox", "fg:property", "name"),
			want: attrs("tpl:name", `"name"`, "tpl:classappend", classappend),
		},
		{
			name: "radio has no value",
			el:   el("input", "type", "RADIO", "fg:property", "name"),
			want: attrs("tpl:name", `"name"`, "tpl:classappend", classappend),
		},
		{
			name: "select binds name only",
			el:   el("select", "fg:property", "name"),
			want: attrs("tpl:name", `"name"`, "tpl:classappend", classappend),
		},
		{
			name: "textarea gets text",
			el:   el("textarea", "fg:property", "name"),
			want: attrs("tpl:name", `"name"`, "tpl:text", "name", "tpl:classappend", classappend),
		},
		{
			name: "other elements get text",
			el:   el("span", "fg:property", "name"),
			want: attrs("tpl:text", "name", "tpl:classappend", classappend),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := process(t, d, tt.el, nil)
			if diff := cmp.Diff(tt.want, res.Set); diff != "" {
				t.Fatalf("generated mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"fg:property"}, res.Remove); diff != "" {
				t.Fatalf("remove mismatch (-want +got):\n%s", diff)
			}
			if !res.Reevaluate {
				t.Fatalf("rewritten elements must be re-evaluated")
			}
		})
	}
}

func TestPropertyExplicitWins(t *testing.T) {
	d := newDispatcher(t)

	res := process(t, d, el("input", "type", "text", "fg:property", "x", "tpl:value", "custom"), nil)
	want := attrs("tpl:name", `"x"`, "tpl:classappend", `errors.Exists("x") ? "validError"`)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}
}

func TestPropertyUsesAttrAppendWhenClassAppendIsExplicit(t *testing.T) {
	d := newDispatcher(t)

	res := process(t, d, el("input", "fg:property", "x", "tpl:classappend", "wide"), nil)
	want := attrs("tpl:name", `"x"`, "tpl:value", "x", "tpl:attrappend", `class=(errors.Exists("x") ? " validError")`)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}

	both := process(t, d, el("span", "fg:property", "x", "tpl:classappend", "a", "tpl:attrappend", "b"), nil)
	if diff := cmp.Diff(attrs("tpl:text", "x"), both.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}
}

func TestPropertyInsideIteration(t *testing.T) {
	d := newDispatcher(t, directive.WithInvalidClass("is-invalid"))
	scope := &directive.Scope{Stack: stackOf(directive.Frame{IterVar: "item", Index: 2, PathPrefix: "items[2]"})}

	res := process(t, d, el("input", "fg:property", "item.quantity"), scope)
	want := attrs(
		"tpl:name", `"items[2].quantity"`,
		"tpl:value", "item.quantity",
		"tpl:classappend", `errors.Exists("items[2].quantity") ? "is-invalid"`,
	)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectBindingFeedsOptionCls(t *testing.T) {
	d := newDispatcher(t)

	single := process(t, d, el("select", "fg:property", "status"), nil)
	if diff := cmp.Diff(directive.Binding{SelectProperty: "status", Field: "status"}, single.Binding); diff != "" {
		t.Fatalf("binding mismatch (-want +got):\n%s", diff)
	}

	single.Binding.Tag = "select"
	scope := &directive.Scope{Ancestors: []directive.Binding{{Tag: "form"}, single.Binding}}
	res := process(t, d, el("option", "fg:optionCls", "MemberStatus"), scope)
	want := attrs(
		"tpl:each", `cdef, cdefStat : cls.List("MemberStatus")`,
		"tpl:value", "cls.Code(cdef)",
		"tpl:text", "cls.Alias(cdef)",
		"tpl:selected", "cls.Code(cdef) == status",
	)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}

	for _, value := range []string{"", "Multiple"} {
		bare := process(t, d, el("select", "fg:property", "statuses", "multiple", value), nil)
		if !bare.Binding.Multiple {
			t.Fatalf("multiple=%q must bind a multiple select", value)
		}
	}

	multi := process(t, d, el("select", "fg:property", "statuses", "multiple", "multiple"), nil)
	multi.Binding.Tag = "select"
	scope = &directive.Scope{Ancestors: []directive.Binding{multi.Binding, {Tag: "optgroup"}}}
	res = process(t, d, el("option", "fg:optioncls", "s, st : MemberStatus.active"), scope)
	want = attrs(
		"tpl:each", `s, st : cls.List("MemberStatus.active")`,
		"tpl:value", "cls.Code(s)",
		"tpl:text", "cls.Alias(s)",
		"tpl:selected", "statuses and cls.Code(s) in statuses",
	)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionClsWithoutSelectOmitsSelected(t *testing.T) {
	d := newDispatcher(t)

	res := process(t, d, el("option", "fg:optionCls", "MemberStatus"), nil)
	for _, attr := range res.Set {
		if attr.Key == "tpl:selected" {
			t.Fatalf("selected must not be generated without a bound select")
		}
	}
}

func TestOptionClsErrors(t *testing.T) {
	d := newDispatcher(t)
	scope := &directive.Scope{TemplatePath: "member/edit.html"}

	_, err := d.Process(context.Background(), el("option", "fg:optionCls", "Nope"), scope)
	var notFound *directive.ClassificationNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ClassificationNotFoundError, got %v", err)
	}
	if notFound.TemplatePath != "member/edit.html" || notFound.Attribute != "fg:optionCls" || notFound.Value != "Nope" {
		t.Fatalf("error lacks context: %#v", notFound)
	}

	_, err = d.Process(context.Background(), el("option", "fg:optionCls", "s : Nope"), scope)
	want := `directive: classification "Nope" not found in fg:optionCls="s : Nope" (template member/edit.html)`
	if err == nil || err.Error() != want {
		t.Fatalf("error = %v, want %s", err, want)
	}

	_, err = d.Process(context.Background(), el("option", "fg:optionCls", "MemberStatus.none"), scope)
	var groupNotFound *directive.ClassificationGroupNotFoundError
	if !errors.As(err, &groupNotFound) || !errors.Is(err, directive.ErrClassificationGroupNotFound) {
		t.Fatalf("expected group not found, got %v", err)
	}
	if groupNotFound.Value != "MemberStatus.none" || groupNotFound.Group != "none" {
		t.Fatalf("group error lacks context: %#v", groupNotFound)
	}

	_, err = d.Process(context.Background(), el("option", "fg:optionCls", " , x : MemberStatus"), scope)
	if !errors.Is(err, directive.ErrMalformedDirective) {
		t.Fatalf("expected malformed directive, got %v", err)
	}

	_, err = d.Process(context.Background(), el("div", "fg:optionCls", "MemberStatus"), scope)
	if !errors.Is(err, directive.ErrMalformedDirective) {
		t.Fatalf("expected malformed directive on non-option, got %v", err)
	}
}

func TestErrorsDirective(t *testing.T) {
	d := newDispatcher(t)

	res := process(t, d, el("li", "fg:errors", "name", "class", "alert errors"), nil)
	want := attrs(
		"tpl:each", `er : errors.Part("name")`,
		"tpl:text", "er.Message",
		"class", "alert errors",
	)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}

	res = process(t, d, el("li", "fg:errors", "ALL"), nil)
	want = attrs("tpl:each", "er : errors.All()", "tpl:text", "er.Message", "class", "errors")
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}

	scope := &directive.Scope{Stack: stackOf(directive.Frame{IterVar: "line", PathPrefix: "lines[4]"})}
	res = process(t, d, el("p", "fg:errors", "line.sku", "class", "hint"), scope)
	want = attrs("tpl:each", `er : errors.Part("lines[4].sku")`, "tpl:text", "er.Message", "class", "hint errors")
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenPlacement(t *testing.T) {
	d := newDispatcher(t, directive.WithTokenFieldName("_dst"))
	scope := &directive.Scope{
		Action: "SignupAction",
		Tokens: token.IssuerFunc(func(action string) string { return "tok-" + action }),
	}

	res := process(t, d, el("input", "type", "hidden", "fg:token", "true"), scope)
	want := attrs("tpl:name", `"_dst"`, "tpl:value", `"tok-SignupAction"`)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}

	_, err := d.Process(context.Background(), el("input", "type", "text", "fg:token", "true"), scope)
	var placement *directive.TokenPlacementError
	if !errors.As(err, &placement) || placement.InputType != "text" {
		t.Fatalf("expected TokenPlacementError for text input, got %v", err)
	}
	_, err = d.Process(context.Background(), el("form", "fg:token", "true"), scope)
	if !errors.Is(err, directive.ErrTokenPlacement) {
		t.Fatalf("expected TokenPlacementError for form, got %v", err)
	}

	removed := process(t, d, el("input", "type", "hidden", "fg:token", "false"), scope)
	if !removed.RemoveElement || len(removed.Set) != 0 || removed.Reevaluate {
		t.Fatalf("false token must remove the element without attributes: %#v", removed)
	}

	plain := process(t, d, el("input", "type", "hidden", "name", "id"), scope)
	if plain.Reevaluate || len(plain.Matched) != 0 {
		t.Fatalf("elements without directives need no re-evaluation: %#v", plain)
	}

	_, err = d.Process(context.Background(), el("input", "type", "hidden", "fg:token", "yes"), scope)
	if !errors.Is(err, directive.ErrMalformedDirective) {
		t.Fatalf("expected malformed token value, got %v", err)
	}
}

func TestTokenWithoutIssuerUsesSentinel(t *testing.T) {
	d := newDispatcher(t)
	res := process(t, d, el("input", "type", "hidden", "fg:token", "true"), &directive.Scope{})
	want := attrs("tpl:name", `"_token"`, "tpl:value", `"none"`)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherPrecedenceAndCustomDirectives(t *testing.T) {
	var order []string
	record := func(name string) directive.HandlerFunc {
		return func(_ context.Context, c *directive.Call) error {
			order = append(order, name)
			c.Emit("data", directive.Quote(name))
			return nil
		}
	}
	d := newDispatcher(t,
		directive.WithDirective(directive.Directive{Name: "low", Precedence: 10}, record("low")),
		directive.WithDirective(directive.Directive{Name: "high", Precedence: 2000}, record("high")),
		directive.WithDirective(directive.Directive{Name: "tie", Precedence: 2000}, record("tie")),
	)

	res := process(t, d, el("div", "fg:low", "", "fg:tie", "", "fg:high", ""), nil)
	if diff := cmp.Diff([]string{"high", "tie", "low"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(attrs("tpl:data", `"high"`), res.Set); diff != "" {
		t.Fatalf("first writer must win (-want +got):\n%s", diff)
	}
	if len(res.Remove) != 0 {
		t.Fatalf("custom directives did not ask for removal: %v", res.Remove)
	}

	names := make([]string, 0)
	for _, dir := range d.Directives() {
		names = append(names, dir.Name)
	}
	want := []string{"high", "tie", "property", "errors", "token", "optionCls", "low"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("directive order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistrySealsAfterFirstLookup(t *testing.T) {
	registry := directive.NewRegistry()
	noop := directive.HandlerFunc(func(context.Context, *directive.Call) error { return nil })

	if err := registry.Register(directive.Directive{Name: "a", Precedence: 1}, noop); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := registry.Register(directive.Directive{Name: "A"}, noop); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	_ = registry.List()
	if err := registry.Register(directive.Directive{Name: "b"}, noop); !errors.Is(err, directive.ErrRegistrySealed) {
		t.Fatalf("expected sealed registry, got %v", err)
	}
}

func TestCustomPrefixes(t *testing.T) {
	d := newDispatcher(t, directive.WithPrefix("la"), directive.WithHostPrefix("th"))

	res := process(t, d, el("span", "la:property", "title", "fg:property", "ignored"), nil)
	want := attrs("th:text", "title", "th:classappend", `errors.Exists("title") ? "validError"`)
	if diff := cmp.Diff(want, res.Set); diff != "" {
		t.Fatalf("generated mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectMistakenPrefix(t *testing.T) {
	d := newDispatcher(t)

	diags := d.Detect(el("input", "tpl:property", "name", "tpl:value", "x", "tpl:token", "true"), "form.html")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %#v", diags)
	}
	if diags[0].Attribute != "tpl:property" || diags[0].Suggestion != "fg:property" {
		t.Fatalf("unexpected diagnostic %#v", diags[0])
	}
	if diags[1].Suggestion != "fg:token" {
		t.Fatalf("unexpected diagnostic %#v", diags[1])
	}
	if diags[0].String() == "" {
		t.Fatalf("diagnostic should render")
	}
}
