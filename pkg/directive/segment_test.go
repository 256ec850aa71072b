package directive_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/directive"
)

func TestParseIterationSpec(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want directive.IterationSpec
	}{
		{name: "full", raw: "prod, prodStat : MemberStatus", want: directive.IterationSpec{IterVar: "prod", StatusVar: "prodStat", Ref: "MemberStatus"}},
		{name: "status defaults", raw: "prod : MemberStatus.active", want: directive.IterationSpec{IterVar: "prod", StatusVar: "prodStat", Ref: "MemberStatus.active"}},
		{name: "no colon", raw: "  MemberStatus ", want: directive.IterationSpec{IterVar: "cdef", StatusVar: "cdefStat", Ref: "MemberStatus"}},
		{name: "nested colon", raw: `item : lookup("a:b")`, want: directive.IterationSpec{IterVar: "item", StatusVar: "itemStat", Ref: `lookup("a:b")`}},
		{name: "empty status", raw: "x, : Foo", want: directive.IterationSpec{IterVar: "x", StatusVar: "xStat", Ref: "Foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := directive.ParseIterationSpec(tt.raw)
			if err != nil {
				t.Fatalf("ParseIterationSpec(%q): %v", tt.raw, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("spec mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIterationSpecRejectsMalformed(t *testing.T) {
	for _, raw := range []string{" , x : Foo", "  : Foo", "item :  ", "", "1bad : Foo", "ok, bad-name : Foo"} {
		_, err := directive.ParseIterationSpec(raw)
		if !errors.Is(err, directive.ErrMalformedDirective) {
			t.Fatalf("ParseIterationSpec(%q) error = %v, want malformed", raw, err)
		}
		var typed *directive.MalformedDirectiveError
		if !errors.As(err, &typed) || typed.Value != raw {
			t.Fatalf("expected MalformedDirectiveError carrying %q, got %#v", raw, err)
		}
	}
}
