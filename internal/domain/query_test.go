package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestQueryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "valid query", text: "cijena pšenice", wantErr: nil},
		{name: "empty", text: "", wantErr: ErrEmptyQuery},
		{name: "whitespace only", text: "   \n\t ", wantErr: ErrEmptyQuery},
		{name: "too long", text: strings.Repeat("a", MaxQueryLength+1), wantErr: ErrQueryTooLong},
		{name: "exactly max length", text: strings.Repeat("a", MaxQueryLength), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &QueryRequest{UserID: 1, Text: tt.text}
			err := q.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueryRequest_Sanitize(t *testing.T) {
	q := &QueryRequest{Text: "  weather in Zagreb  "}
	q.Sanitize()
	if q.Text != "weather in Zagreb" {
		t.Errorf("Sanitize() = %q, want trimmed text", q.Text)
	}

	long := &QueryRequest{Text: strings.Repeat("b", MaxQueryLength+100)}
	long.Sanitize()
	if len(long.Text) != MaxQueryLength {
		t.Errorf("Sanitize() length = %d, want %d", len(long.Text), MaxQueryLength)
	}
}
