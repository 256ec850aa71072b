package vanilla_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/classification"
	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/messages"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbind/pkg/token"
)

func memberStatus(t *testing.T) *classification.Registry {
	t.Helper()
	registry := classification.NewRegistry()
	err := registry.Register("MemberStatus",
		classification.Member{Code: "FML", Name: "Formalized", Alias: "Formal", Groups: []string{"active"}},
		classification.Member{Code: "PRV", Name: "Provisional", Alias: "Provisional", Groups: []string{"active"}},
		classification.Member{Code: "WDL", Name: "Withdrawal", Alias: "Withdrawal"},
	)
	if err != nil {
		t.Fatalf("register classification: %v", err)
	}
	return registry
}

func newRenderer(t *testing.T, opts ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	opts = append([]vanilla.Option{vanilla.WithClassifications(memberStatus(t))}, opts...)
	renderer, err := vanilla.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderString(t *testing.T, r *vanilla.Renderer, src string, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.RenderString(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderPropertyBindsControls(t *testing.T) {
	renderer := newRenderer(t)
	errs := messages.New()
	errs.AddText("name", "is required")

	got := renderString(t, renderer, `<form><input type="text" fg:property="name"/><textarea fg:property="bio"></textarea></form>`, render.RenderOptions{
		Form:         map[string]any{"name": "Ada", "bio": "Mathematician"},
		Errors:       errs,
		HiddenFields: map[string]string{"_method": "PUT"},
	})
	want := `<form><input type="text" name="name" value="Ada" class="validError"/>` +
		`<textarea name="bio">Mathematician</textarea>` +
		`<input type="hidden" name="_method" value="PUT"/></form>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderExplicitHostDirectiveWins(t *testing.T) {
	renderer := newRenderer(t)

	got := renderString(t, renderer, `<input fg:property="name" tpl:value='"fixed"' class="wide" tpl:classappend='"big"'/>`, render.RenderOptions{
		Form:   map[string]any{"name": "Ada"},
		Errors: errorsFor("name"),
	})
	want := `<input class="wide big validError" name="name" value="fixed"/>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderNestedIterationIndexesNames(t *testing.T) {
	renderer := newRenderer(t)
	errs := messages.New()
	errs.AddText("items[1].qty", "must be positive")

	src := `<form><div tpl:each="item : items"><input fg:property="item.qty"/><span fg:errors="item.qty"></span></div></form>`
	got := renderString(t, renderer, src, render.RenderOptions{
		Form: map[string]any{
			"items": []any{
				map[string]any{"qty": 1},
				map[string]any{"qty": -2},
			},
		},
		Errors: errs,
	})
	want := `<form>` +
		`<div><input name="items[0].qty" value="1"/></div>` +
		`<div><input name="items[1].qty" value="-2" class="validError"/><span class="errors">must be positive</span></div>` +
		`</form>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEachOnSameElementAsProperty(t *testing.T) {
	renderer := newRenderer(t)

	got := renderString(t, renderer, `<input tpl:each="line, st : lines" fg:property="line.sku" tpl:data-pos="st.Count"/>`, render.RenderOptions{
		Form: map[string]any{"lines": []any{map[string]any{"sku": "A"}, map[string]any{"sku": "B"}}},
	})
	want := `<input name="lines[0].sku" value="A" data-pos="1"/><input name="lines[1].sku" value="B" data-pos="2"/>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderStatusVariable(t *testing.T) {
	renderer := newRenderer(t)

	got := renderString(t, renderer, `<ul><li tpl:each="v : values" tpl:text="vStat.PropertyPath" tpl:data-last="vStat.Last"></li></ul>`, render.RenderOptions{
		Data: map[string]any{"values": []string{"a", "b"}},
	})
	want := `<ul><li data-last="false">values[0]</li><li data-last="true">values[1]</li></ul>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderGeneratedIterationKeepsPropertyPath(t *testing.T) {
	renderer := newRenderer(t)
	errs := messages.New()
	errs.AddText("items[0].qty", "must be positive")

	src := `<div tpl:each="item : items"><p fg:errors="item.qty" tpl:data-path="'p:' + erStat.PropertyPath"></p></div>`
	got := renderString(t, renderer, src, render.RenderOptions{
		Form:   map[string]any{"items": []any{map[string]any{"qty": -1}}},
		Errors: errs,
	})
	if !strings.Contains(got, `data-path="p:"`) || !strings.Contains(got, "must be positive") {
		t.Fatalf("generated errors iteration must not extend the property path: %s", got)
	}
}

func TestRenderOptionClsSingleSelect(t *testing.T) {
	renderer := newRenderer(t)

	got := renderString(t, renderer, `<select fg:property="status"><option fg:optionCls="MemberStatus.active"></option></select>`, render.RenderOptions{
		Form: map[string]any{"status": "PRV"},
	})
	want := `<select name="status">` +
		`<option value="FML">Formal</option>` +
		`<option value="PRV" selected="selected">Provisional</option>` +
		`</select>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderOptionClsBareMultipleAttribute(t *testing.T) {
	renderer := newRenderer(t)

	for _, attr := range []string{"multiple", `multiple=""`, `MULTIPLE="Multiple"`} {
		src := `<select ` + attr + ` fg:property="statuses"><option fg:optionCls="MemberStatus"></option></select>`
		got := renderString(t, renderer, src, render.RenderOptions{
			Form: map[string]any{"statuses": []any{"FML", "WDL"}},
		})
		for _, want := range []string{
			`<option value="FML" selected="selected">Formal</option>`,
			`<option value="PRV">Provisional</option>`,
			`<option value="WDL" selected="selected">Withdrawal</option>`,
		} {
			if !strings.Contains(got, want) {
				t.Fatalf("%s: missing %s in %s", attr, want, got)
			}
		}
	}
}

func TestRenderOptionClsMultipleSelect(t *testing.T) {
	renderer := newRenderer(t)

	src := `<select multiple="multiple" fg:property="statuses"><optgroup label="all"><option fg:optionCls="s : MemberStatus"></option></optgroup></select>`
	got := renderString(t, renderer, src, render.RenderOptions{
		Form: map[string]any{"statuses": []any{"FML", "WDL"}},
	})
	want := `<select multiple="multiple" name="statuses"><optgroup label="all">` +
		`<option value="FML" selected="selected">Formal</option>` +
		`<option value="PRV">Provisional</option>` +
		`<option value="WDL" selected="selected">Withdrawal</option>` +
		`</optgroup></select>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	none := renderString(t, renderer, src, render.RenderOptions{})
	if strings.Contains(none, "selected") {
		t.Fatalf("nothing should be selected without a value: %s", none)
	}
}

func TestRenderToken(t *testing.T) {
	renderer := newRenderer(t)
	opts := render.RenderOptions{
		Action: "SignupAction",
		Tokens: token.IssuerFunc(func(action string) string { return "tok-" + action }),
	}

	got := renderString(t, renderer, `<form><input type="hidden" fg:token="true"/><input type="hidden" fg:token="false"/></form>`, opts)
	want := `<form><input type="hidden" name="_token" value="tok-SignupAction"/></form>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	_, err := renderer.RenderString(context.Background(), `<input type="text" fg:token="true"/>`, opts)
	if !errors.Is(err, directive.ErrTokenPlacement) {
		t.Fatalf("expected token placement error, got %v", err)
	}
}

func TestRenderRejectsNameCollisions(t *testing.T) {
	renderer := newRenderer(t)

	_, err := renderer.RenderString(context.Background(), `<p></p>`, render.RenderOptions{
		Data: map[string]any{"errors": "mine"},
	})
	var reserved *directive.ReservedWordConflictError
	if !errors.As(err, &reserved) || reserved.Name != "errors" {
		t.Fatalf("expected reserved word conflict, got %v", err)
	}

	_, err = renderer.RenderString(context.Background(), `<p></p>`, render.RenderOptions{
		Data: map[string]any{"name": "data"},
		Form: map[string]any{"name": "form"},
	})
	var conflict *directive.DataConflictError
	if !errors.As(err, &conflict) || conflict.Existing != directive.SourceData || conflict.Incoming != directive.SourceForm {
		t.Fatalf("expected data conflict, got %v", err)
	}
}

func TestRenderTemplateFuncsAreReserved(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithTemplateFuncs(map[string]any{
		"upper": strings.ToUpper,
	}))

	got := renderString(t, renderer, `<b tpl:text="upper(name)"></b>`, render.RenderOptions{Data: map[string]any{"name": "ada"}})
	if got != `<b>ADA</b>` {
		t.Fatalf("unexpected output %q", got)
	}

	_, err := renderer.RenderString(context.Background(), `<b></b>`, render.RenderOptions{Data: map[string]any{"upper": 1}})
	if !errors.Is(err, directive.ErrReservedWordConflict) {
		t.Fatalf("expected reserved conflict for template func name, got %v", err)
	}

	if _, err := vanilla.New(vanilla.WithTemplateFuncs(map[string]any{"cls": strings.ToUpper})); err == nil {
		t.Fatalf("expected engine names to be rejected as template funcs")
	}
}

func TestRenderHostDirectives(t *testing.T) {
	renderer := newRenderer(t)

	src := `<a tpl:if="show" tpl:href="url">x</a><a tpl:if="hide">gone</a>` +
		`<div tpl:remove="tag"><b>kept</b></div><div tpl:remove="all">dropped</div>` +
		`<i class="a" tpl:attrappend='class=(flag ? " b"), title=("t-" + url)'></i>`
	got := renderString(t, renderer, src, render.RenderOptions{
		Data: map[string]any{"show": true, "hide": false, "url": "/home", "flag": true},
	})
	want := `<a href="/home">x</a><b>kept</b><i class="a b" title="t-/home"></i>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderUnresolvedExpressionUsesFallbackView(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithFallbackView(vanilla.DefaultFallbackView))

	out, err := renderer.RenderString(context.Background(), `<p tpl:text="broken(("></p>`, render.RenderOptions{})
	var unresolved *directive.UnresolvedExpressionError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected unresolved expression error, got %v", err)
	}
	if unresolved.Attribute != "tpl:text" || unresolved.Expression != "broken((" {
		t.Fatalf("error lacks context: %#v", unresolved)
	}
	if !strings.Contains(string(out), "formbind-error") || !strings.Contains(string(out), "broken((") {
		t.Fatalf("expected fallback view, got %q", out)
	}

	plain := newRenderer(t)
	out, err = plain.RenderString(context.Background(), `<p tpl:text="broken(("></p>`, render.RenderOptions{})
	if err == nil || out != nil {
		t.Fatalf("expected error without output, got %q, %v", out, err)
	}
}

func TestRenderWarnsAboutMistakenPrefix(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	renderer := newRenderer(t, vanilla.WithLogger(logger))

	got := renderString(t, renderer, `<input tpl:property="name"/>`, render.RenderOptions{})
	if got != `<input/>` {
		t.Fatalf("mistaken attribute should be dropped, got %q", got)
	}
	if !strings.Contains(logs.String(), "suggestion=fg:property") {
		t.Fatalf("expected warning, got %q", logs.String())
	}
}

func TestRenderNamedTemplatesAndLint(t *testing.T) {
	files := fstest.MapFS{
		"member/edit.html": {Data: []byte(`<!DOCTYPE html><html><head></head><body><form><input fg:property="name"/><span tpl:errors="name"></span></form></body></html>`)},
	}
	renderer := newRenderer(t, vanilla.WithTemplatesFS(files))

	out, err := renderer.Render(context.Background(), "member/edit.html", render.RenderOptions{Form: map[string]any{"name": "Lin"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<!DOCTYPE html><html><head></head><body><form><input name="name" value="Lin"/><span></span></form></body></html>`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	diags, err := renderer.Lint("member/edit.html")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(diags) != 1 || diags[0].Suggestion != "fg:errors" || diags[0].TemplatePath != "member/edit.html" {
		t.Fatalf("unexpected diagnostics %#v", diags)
	}

	if _, err := renderer.Render(context.Background(), "missing.html", render.RenderOptions{}); err == nil {
		t.Fatalf("expected missing template error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, "member/edit.html", render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRenderStructForm(t *testing.T) {
	type signup struct {
		Email  string `form:"email"`
		Status string
	}
	renderer := newRenderer(t)

	got := renderString(t, renderer, `<input fg:property="email"/><select fg:property="status"><option fg:optionCls="MemberStatus"></option></select>`, render.RenderOptions{
		Form: signup{Email: "a@b.c", Status: "WDL"},
	})
	want := `<input name="email" value="a@b.c"/><select name="status">` +
		`<option value="FML">Formal</option><option value="PRV">Provisional</option>` +
		`<option value="WDL" selected="selected">Withdrawal</option></select>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func errorsFor(fields ...string) *messages.Messages {
	msgs := messages.New()
	for _, f := range fields {
		msgs.AddText(f, "invalid")
	}
	return msgs
}
