package settings

import (
	"testing"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	want := Run{KeyMode: "vim", Interactive: true}
	if *got != want {
		t.Errorf("NewCliParams() = %+v, want %+v", *got, want)
	}
}

func TestLogToStderr(t *testing.T) {
	tests := []struct {
		name string
		run  Run
		want bool
	}{
		{name: "interactive without file", run: Run{Interactive: true}, want: false},
		{name: "snapshot without file", run: Run{Snapshot: true}, want: true},
		{name: "file wins", run: Run{LogFile: "/tmp/tv.log"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.run.LogToStderr(); got != tt.want {
				t.Errorf("LogToStderr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCliBinaryName(t *testing.T) {
	if CliBinaryName != "tv" {
		t.Fatalf("unexpected binary name %q", CliBinaryName)
	}
}
