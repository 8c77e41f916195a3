package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args    []string
		want    command
		wantErr string
	}{
		{[]string{"migrate", "up"}, command{name: "migrate", arg: "up"}, ""},
		{[]string{"migrate", "redo"}, command{name: "migrate", arg: "redo"}, ""},
		{[]string{"seed-demo"}, command{name: "seed-demo"}, ""},
		{nil, command{}, "missing command"},
		{[]string{"migrate"}, command{}, "migrate needs"},
		{[]string{"migrate", "reset"}, command{}, "migrate needs"},
		{[]string{"seed-demo", "now"}, command{}, "takes no arguments"},
		{[]string{"drop"}, command{}, `unknown command "drop"`},
	}
	for _, tt := range tests {
		got, err := parseCommand(tt.args)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("parseCommand(%v) err = %v, want %q", tt.args, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseCommand(%v) = %+v, %v", tt.args, got, err)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-dsn", "postgres://x"}, "missing command"},
		{[]string{"-dsn", "postgres://x", "migrate", "sideways"}, "migrate needs"},
		{[]string{"-dsn", "", "seed-demo"}, "DATABASE_URL or -dsn is required"},
	}
	for _, tt := range tests {
		var out, errOut bytes.Buffer
		if code := run(context.Background(), tt.args, &out, &errOut); code != 2 {
			t.Errorf("run(%v) = %d, want 2", tt.args, code)
		}
		if !strings.Contains(errOut.String(), tt.want) {
			t.Errorf("run(%v) stderr = %q", tt.args, errOut.String())
		}
	}
}
