package tidy

import (
	"fmt"
	"testing"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

// fakeModel stands in for a fitted model object in tests.
type fakeModel struct {
	rows []coeff.Row
	err  error
}

// fakeTidier tidies fakeModel values.
var fakeTidier = TidierFunc(func(model any) ([]coeff.Row, error) {
	m, ok := model.(fakeModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", model)
	}
	return m.rows, m.err
})

func TestNormalize_TableInput(t *testing.T) {
	tbl := coeff.MustTable(
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
		coeff.NewRow("x2", -0.3).WithStdErr(0.2),
	)

	out, err := Normalize(FromTable(tbl), nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if out.Len() != 2 {
		t.Errorf("Len() = %d, want 2", out.Len())
	}
	// Output is a copy; mutating it must not affect the input.
	_ = out.Append(coeff.NewRow("x3", 1).WithStdErr(0.1))
	if tbl.Len() != 2 {
		t.Error("input table was mutated")
	}
}

func TestNormalize_TableInput_Idempotent(t *testing.T) {
	tbl := coeff.MustTable(
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
		coeff.NewRow("x2", -0.3).WithBounds(-0.7, 0.1),
	)

	once, err := Normalize(FromTable(tbl), nil)
	if err != nil {
		t.Fatalf("first Normalize() error = %v", err)
	}
	twice, err := Normalize(FromTable(once), nil)
	if err != nil {
		t.Fatalf("second Normalize() error = %v", err)
	}

	if once.Len() != twice.Len() {
		t.Fatalf("row count changed: %d vs %d", once.Len(), twice.Len())
	}
	for i := 0; i < once.Len(); i++ {
		if once.Row(i) != twice.Row(i) {
			t.Errorf("row %d changed: %+v vs %+v", i, once.Row(i), twice.Row(i))
		}
	}
}

func TestNormalize_SingleModel(t *testing.T) {
	m := fakeModel{rows: []coeff.Row{
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
	}}

	out, err := Normalize(FromModel(m), fakeTidier)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := out.Row(0).Model; got != "" {
		t.Errorf("single model should keep implicit model, got %q", got)
	}
}

func TestNormalize_ModelList_AssignsPositionalLabels(t *testing.T) {
	m1 := fakeModel{rows: []coeff.Row{coeff.NewRow("x1", 0.5).WithStdErr(0.1)}}
	m2 := fakeModel{rows: []coeff.Row{coeff.NewRow("x1", 0.7).WithStdErr(0.2)}}

	out, err := Normalize(FromModels(m1, m2), fakeTidier)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := out.Row(0).Model; got != "Model 1" {
		t.Errorf("row 0 model = %q, want %q", got, "Model 1")
	}
	if got := out.Row(1).Model; got != "Model 2" {
		t.Errorf("row 1 model = %q, want %q", got, "Model 2")
	}
}

func TestNormalize_ModelList_KeepsTidierLabels(t *testing.T) {
	m1 := fakeModel{rows: []coeff.Row{coeff.NewRow("x1", 0.5).WithStdErr(0.1).WithModel("ols")}}
	m2 := fakeModel{rows: []coeff.Row{coeff.NewRow("x1", 0.7).WithStdErr(0.2).WithModel("logit")}}

	out, err := Normalize(FromModels(m1, m2), fakeTidier)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := out.Row(0).Model; got != "ols" {
		t.Errorf("row 0 model = %q, want %q", got, "ols")
	}
	if got := out.Row(1).Model; got != "logit" {
		t.Errorf("row 1 model = %q, want %q", got, "logit")
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		td       Tidier
		wantCode errors.Code
	}{
		{
			name:     "nil input",
			in:       nil,
			wantCode: errors.ErrCodeInputFormat,
		},
		{
			name:     "model without tidier",
			in:       FromModel(fakeModel{}),
			td:       nil,
			wantCode: errors.ErrCodeInputFormat,
		},
		{
			name:     "empty model list",
			in:       FromModels(),
			td:       fakeTidier,
			wantCode: errors.ErrCodeInputFormat,
		},
		{
			name:     "tidier failure",
			in:       FromModel(fakeModel{err: fmt.Errorf("no coef table")}),
			td:       fakeTidier,
			wantCode: errors.ErrCodeInputFormat,
		},
		{
			name: "tidied row missing estimate",
			in: FromModel(fakeModel{rows: []coeff.Row{
				{Term: "x1", Estimate: coeff.NA, StdErr: 0.1, Low: coeff.NA, High: coeff.NA},
			}}),
			td:       fakeTidier,
			wantCode: errors.ErrCodeInputFormat,
		},
		{
			name: "tidied row missing interval",
			in: FromModel(fakeModel{rows: []coeff.Row{
				coeff.NewRow("x1", 0.5),
			}}),
			td:       fakeTidier,
			wantCode: errors.ErrCodeInputFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in, tt.td)
			if err == nil {
				t.Fatal("Normalize() error = nil, want error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Normalize() error code = %q, want %q (%v)", errors.GetCode(err), tt.wantCode, err)
			}
		})
	}
}
