package report

import (
	"reflect"
	"testing"

	"github.com/rcaccelerator/server/pkg/models"
)

func TestDedupeFailures(t *testing.T) {
	tests := []struct {
		name string
		in   []models.FailureRecord
		want []models.FailureRecord
	}{
		{
			name: "first occurrence wins",
			in: []models.FailureRecord{
				{TestName: "test_a", Traceback: "first"},
				{TestName: "test_b", Traceback: "b"},
				{TestName: "test_a", Traceback: "second"},
			},
			want: []models.FailureRecord{
				{TestName: "test_a", Traceback: "first"},
				{TestName: "test_b", Traceback: "b"},
			},
		},
		{
			name: "order of first occurrences is preserved",
			in: []models.FailureRecord{
				{TestName: "test_c", Traceback: "c"},
				{TestName: "test_a", Traceback: "a"},
				{TestName: "test_c", Traceback: "c2"},
				{TestName: "test_b", Traceback: "b"},
				{TestName: "test_a", Traceback: "a2"},
			},
			want: []models.FailureRecord{
				{TestName: "test_c", Traceback: "c"},
				{TestName: "test_a", Traceback: "a"},
				{TestName: "test_b", Traceback: "b"},
			},
		},
		{
			name: "equality is exact, case and tags included",
			in: []models.FailureRecord{
				{TestName: "test_a", Traceback: "x"},
				{TestName: "Test_A", Traceback: "y"},
				{TestName: "test_a[slow]", Traceback: "z"},
			},
			want: []models.FailureRecord{
				{TestName: "test_a", Traceback: "x"},
				{TestName: "Test_A", Traceback: "y"},
				{TestName: "test_a[slow]", Traceback: "z"},
			},
		},
		{
			name: "placeholder names collapse together",
			in: []models.FailureRecord{
				{TestName: "Unknown Test Name", Traceback: "one"},
				{TestName: "Unknown Test Name", Traceback: "two"},
			},
			want: []models.FailureRecord{
				{TestName: "Unknown Test Name", Traceback: "one"},
			},
		},
		{
			name: "empty input",
			in:   nil,
			want: []models.FailureRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeFailures(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("\nexpected: %+v\ngot:      %+v", tt.want, got)
			}
		})
	}
}

func TestDedupeFailures_DoesNotMutateInput(t *testing.T) {
	in := []models.FailureRecord{
		{TestName: "test_a", Traceback: "first"},
		{TestName: "test_a", Traceback: "second"},
	}
	DedupeFailures(in)
	if in[1].Traceback != "second" {
		t.Errorf("input slice was mutated: %+v", in)
	}
}
