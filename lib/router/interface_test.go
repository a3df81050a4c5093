package router

import "testing"

// TestParseConnectionClass tests the accepted class names
func TestParseConnectionClass(t *testing.T) {
	tests := []struct {
		input   string
		want    ConnectionClass
		wantErr bool
	}{
		{input: "primary", want: ClassPrimary},
		{input: "MASTER", want: ClassPrimary},
		{input: "replica", want: ClassReplica},
		{input: " slave ", want: ClassReplica},
		{input: "secondary", want: ClassReplica},
		{input: "any", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseConnectionClass(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConnectionClass(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseConnectionClass(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

// TestStateString tests the state names
func TestStateString(t *testing.T) {
	want := map[State]string{
		StateUnconnected: "unconnected",
		StateConnecting:  "connecting",
		StateConnected:   "connected",
		StateFailed:      "failed",
	}
	for s, name := range want {
		if s.String() != name {
			t.Errorf("State(%d).String() = %s, want %s", int32(s), s.String(), name)
		}
	}
}
