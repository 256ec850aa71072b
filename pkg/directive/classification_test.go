package directive_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formbind/pkg/classification"
	"github.com/goliatone/go-formbind/pkg/directive"
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
		t.Fatalf("Register: %v", err)
	}
	return registry
}

func TestExpanderExpand(t *testing.T) {
	x := directive.NewExpander(memberStatus(t))

	all, err := x.Expand("MemberStatus")
	if err != nil || len(all) != 3 {
		t.Fatalf("Expand = %d members, %v", len(all), err)
	}
	active, err := x.Expand("MemberStatus.active")
	if err != nil || len(active) != 2 {
		t.Fatalf("Expand group = %d members, %v", len(active), err)
	}

	_, err = x.Expand("Unknown")
	var notFound *directive.ClassificationNotFoundError
	if !errors.As(err, &notFound) || notFound.Name != "Unknown" {
		t.Fatalf("expected ClassificationNotFoundError, got %v", err)
	}
	if !errors.Is(err, classification.ErrNotFound) {
		t.Fatalf("error should wrap the provider error")
	}

	_, err = x.Expand("MemberStatus.gone")
	var groupNotFound *directive.ClassificationGroupNotFoundError
	if !errors.As(err, &groupNotFound) || groupNotFound.Group != "gone" {
		t.Fatalf("expected ClassificationGroupNotFoundError, got %v", err)
	}
}

func TestSelectedExpression(t *testing.T) {
	x := directive.NewExpander(nil)

	if got := x.SelectedExpression("cdef", "status", false); got != "cls.Code(cdef) == status" {
		t.Fatalf("single select expression = %q", got)
	}
	if got := x.SelectedExpression("cdef", "statuses", true); got != "statuses and cls.Code(cdef) in statuses" {
		t.Fatalf("multiple select expression = %q", got)
	}
}
