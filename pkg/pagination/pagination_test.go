package pagination

import "testing"

func TestNormalizePageSize(t *testing.T) {
	if got := NormalizePageSize(0); got != DefaultPageSize {
		t.Fatalf("expected default page size, got %d", got)
	}
	if got := NormalizePageSize(500); got != MaxPageSize {
		t.Fatalf("expected cap at %d, got %d", MaxPageSize, got)
	}
	if got := NormalizePageSize(42); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, PageSize: 10}
	if got := p.Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	p = Params{Page: 0, PageSize: 10}
	if got := p.Offset(); got != 0 {
		t.Fatalf("expected offset 0 for clamped page, got %d", got)
	}
}

func TestBuildResult(t *testing.T) {
	res := BuildResult(Params{Page: 2, PageSize: 10}, 25)
	if res.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", res.TotalPages)
	}
	if !res.HasNext || !res.HasPrev {
		t.Fatalf("expected middle page to have neighbors: %+v", res)
	}

	res = BuildResult(Params{Page: 9, PageSize: 10}, 25)
	if res.HasNext {
		t.Fatalf("page beyond last should not have next: %+v", res)
	}

	res = BuildResult(Params{Page: 1, PageSize: 10}, 0)
	if res.TotalPages != 1 || res.HasNext || res.HasPrev {
		t.Fatalf("empty result should collapse to a single page: %+v", res)
	}
}
