package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/validation"
)

func newTestService() *TaskService {
	return NewTaskService(repository.NewMemoryTaskRepository(), validation.MustNew())
}

func body(t *testing.T, raw string) any {
	t.Helper()
	v, err := validation.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestValidateTaskRules(t *testing.T) {
	v := validation.MustNew()
	long := func(n int) string { return strings.Repeat("x", n) }

	cases := []struct {
		name    string
		body    string
		wantErr string // substring; empty means valid
	}{
		{"title 255", `{"title":"` + long(255) + `"}`, ""},
		{"title 256", `{"title":"` + long(256) + `"}`, "255"},
		{"title padded to 255 after trim", `{"title":"  ` + long(255) + `  "}`, ""},
		{"missing title", `{}`, "title is required"},
		{"blank title", `{"title":"   "}`, "title is required"},
		{"numeric title", `{"title":7}`, "title is required"},
		{"description 1000", `{"title":"t","description":"` + long(1000) + `"}`, ""},
		{"description 1001", `{"title":"t","description":"` + long(1001) + `"}`, "1000"},
		{"leap day in leap year", `{"title":"t","dueDate":"2024-02-29"}`, ""},
		{"leap day in common year", `{"title":"t","dueDate":"2026-02-29"}`, "date"},
		{"april 31", `{"title":"t","dueDate":"2026-04-31"}`, "date"},
		{"bad shape", `{"title":"t","dueDate":"31/01/2026"}`, "format"},
		{"empty due date is null", `{"title":"t","dueDate":""}`, ""},
		{"negative sort order", `{"title":"t","sortOrder":-10}`, ""},
		{"fractional sort order", `{"title":"t","sortOrder":2.5}`, "integer"},
		{"integral sort order with fraction part", `{"title":"t","sortOrder":1.0}`, ""},
		{"sort order in exponent form", `{"title":"t","sortOrder":1e2}`, ""},
		{"sort order beyond int64", `{"title":"t","sortOrder":1e30}`, "integer"},
		{"nul in title", `{"title":"a\u0000b"}`, "title cannot contain null characters"},
		{"nul in description", `{"title":"t","description":"x\u0000"}`, "description cannot contain null characters"},
		{"string completed", `{"title":"t","completed":"true"}`, "boolean"},
	}
	for _, tc := range cases {
		_, err := ValidateTask(v, body(t, tc.body))
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: err = %v; want ValidationError", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err.Error(), tc.wantErr)
		}
	}
}

func TestValidateTaskIntegralSortOrder(t *testing.T) {
	v := validation.MustNew()
	for raw, want := range map[string]int64{"1.0": 1, "1e2": 100, "-3.00": -3, "9007199254740993": 9007199254740993} {
		in, err := ValidateTask(v, body(t, `{"title":"t","sortOrder":`+raw+`}`))
		if err != nil {
			t.Fatalf("sortOrder %s: %v", raw, err)
		}
		if in.SortOrder != want {
			t.Fatalf("sortOrder %s = %d; want %d", raw, in.SortOrder, want)
		}
	}
}

func TestValidateTaskCollectsEveryProblem(t *testing.T) {
	_, err := ValidateTask(validation.MustNew(), body(t,
		`{"title":"","description":"`+strings.Repeat("d", 1001)+`","dueDate":"2026-02-30"}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	if len(verr.Problems) != 3 {
		t.Fatalf("got %d problems: %v", len(verr.Problems), verr.Problems)
	}
}

func TestValidateTaskDefaults(t *testing.T) {
	in, err := ValidateTask(validation.MustNew(), body(t, `{"title":"  trim me  "}`))
	if err != nil {
		t.Fatal(err)
	}
	want := domain.TaskInput{Title: "trim me"}
	if in.Title != want.Title || in.Description != "" || in.Completed || in.DueDate != nil || in.SortOrder != 0 {
		t.Fatalf("got %+v; want %+v", in, want)
	}
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.5", "-3", "0", "12abc"} {
		if _, err := ParseID(raw); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("ParseID(%q) err = %v", raw, err)
		}
	}
	if id, err := ParseID("17"); err != nil || id != 17 {
		t.Fatalf("ParseID(17) = %d, %v", id, err)
	}
}

func TestTaskService_CreateThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.Create(ctx, body(t,
		`{"title":" Buy milk ","description":"2 litres","completed":true,"dueDate":"2026-05-01","sortOrder":3}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Buy milk" || got.Description != "2 litres" || !got.Completed ||
		got.DueDate == nil || *got.DueDate != "2026-05-01" || got.SortOrder != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.ID == 0 || got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("server fields not assigned: %+v", got)
	}
}

func TestTaskService_UpdateReplacesAndChecksExistence(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	created, _ := svc.Create(ctx, body(t, `{"title":"a","description":"keep?","dueDate":"2026-01-01","sortOrder":9}`))

	updated, err := svc.Update(ctx, created.ID, body(t, `{"title":"b"}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "b" || updated.Description != "" || updated.DueDate != nil || updated.SortOrder != 0 {
		t.Fatalf("update merged instead of replacing: %+v", updated)
	}

	if _, err := svc.Update(ctx, 999, body(t, `{"title":""}`)); !errors.Is(err, repository.ErrTaskNotFound) {
		t.Fatalf("missing task err = %v; want not found before validation", err)
	}

	var verr *ValidationError
	if _, err := svc.Update(ctx, created.ID, body(t, `{"title":""}`)); !errors.As(err, &verr) {
		t.Fatalf("invalid update err = %v", err)
	}
}

func TestTaskService_SetStatusIgnoresOtherFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	created, _ := svc.Create(ctx, body(t, `{"title":"original","description":"desc"}`))

	updated, err := svc.SetStatus(ctx, created.ID, body(t, `{"completed":true,"title":"hijack","description":"changed"}`))
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !updated.Completed || updated.Title != "original" || updated.Description != "desc" {
		t.Fatalf("status patch touched other fields: %+v", updated)
	}

	var verr *ValidationError
	if _, err := svc.SetStatus(ctx, created.ID, body(t, `{"completed":"yes"}`)); !errors.As(err, &verr) {
		t.Fatalf("non-boolean err = %v", err)
	}
	if _, err := svc.SetStatus(ctx, 404, body(t, `{"completed":false}`)); !errors.Is(err, repository.ErrTaskNotFound) {
		t.Fatalf("missing task err = %v", err)
	}
}

func TestTaskService_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	created, _ := svc.Create(ctx, body(t, `{"title":"gone"}`))
	res, err := svc.Delete(ctx, created.ID)
	if err != nil || res.ID != created.ID {
		t.Fatalf("delete = %+v, %v", res, err)
	}
	if _, err := svc.Delete(ctx, created.ID); !errors.Is(err, repository.ErrTaskNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
