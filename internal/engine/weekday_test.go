package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseRepeatDays(t *testing.T) {
	tests := []struct {
		name    string
		in      []any
		want    []int
		wantErr bool
	}{
		{"empty", nil, nil, false},
		{"ints", []any{0, 2, 4}, []int{0, 2, 4}, false},
		{"json numbers", []any{float64(1), float64(3)}, []int{1, 3}, false},
		{"names", []any{"mon", "WED", " fri "}, []int{0, 2, 4}, false},
		{"full names", []any{"monday", "Sunday"}, []int{0, 6}, false},
		{"mixed", []any{"sat", float64(0)}, []int{0, 5}, false},
		{"dedup and sort", []any{"sun", "mon", "sun", 0}, []int{0, 6}, false},
		{"fractional number", []any{1.5}, nil, true},
		{"out of range", []any{7}, nil, true},
		{"negative", []any{-1}, nil, true},
		{"bad name", []any{"noday"}, nil, true},
		{"bad type", []any{true}, nil, true},
		{"one bad rejects all", []any{"mon", "xyz"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepeatDays(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2026-08-24 is a Monday
	monday := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := WeekdayIndex(monday.AddDate(0, 0, i)); got != i {
			t.Errorf("day %d: index = %d, want %d", i, got, i)
		}
	}
}
