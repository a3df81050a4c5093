package conn

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// TestExtractReserved tests that the reserved keys are removed and parsed
func TestExtractReserved(t *testing.T) {
	raw := Options{
		OptAutoConnect: true,
		OptTimeout:     5,
		"database":     1,
		"clientName":   "app",
	}

	reserved, rest, err := ExtractReserved(raw)
	if err != nil {
		t.Fatalf("ExtractReserved() unexpected error: %v", err)
	}
	if !reserved.AutoConnect {
		t.Error("AutoConnect should be true")
	}
	if reserved.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", reserved.Timeout)
	}

	want := Options{"database": 1, "clientName": "app"}
	if !reflect.DeepEqual(rest, want) {
		t.Errorf("forwarded options = %v, want %v", rest, want)
	}

	// input must stay untouched
	if len(raw) != 4 {
		t.Errorf("input options were modified: %v", raw)
	}
}

// TestExtractReservedTimeoutTypes tests the accepted timeout representations
func TestExtractReservedTimeoutTypes(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{name: "Seconds as int", value: 3, want: 3 * time.Second},
		{name: "Seconds as int64", value: int64(7), want: 7 * time.Second},
		{name: "Duration", value: 1500 * time.Millisecond, want: 1500 * time.Millisecond},
		{name: "Zero", value: 0, wantErr: true},
		{name: "Negative", value: -1, wantErr: true},
		{name: "String", value: "2", wantErr: true},
		{name: "Float", value: 2.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reserved, _, err := ExtractReserved(Options{OptTimeout: tt.value})
			if tt.wantErr {
				if !errors.Is(err, ErrConfiguration) {
					t.Fatalf("error = %v, want configuration error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reserved.Timeout != tt.want {
				t.Errorf("Timeout = %v, want %v", reserved.Timeout, tt.want)
			}
		})
	}
}

// TestExtractReservedAutoConnectType tests that autoConnect must be a boolean
func TestExtractReservedAutoConnectType(t *testing.T) {
	_, _, err := ExtractReserved(Options{OptAutoConnect: "yes"})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
}

// TestOptionsKeys tests that the password comes first and the rest is sorted
func TestOptionsKeys(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "Password first",
			opts: Options{"password": "x", "clientName": "a", "database": 2},
			want: []string{"password", "clientName", "database"},
		},
		{
			name: "No password",
			opts: Options{"database": 2, "clientName": "a"},
			want: []string{"clientName", "database"},
		},
		{
			name: "Empty",
			opts: Options{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Keys(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestOptionsDisplay tests that credentials are masked
func TestOptionsDisplay(t *testing.T) {
	opts := Options{"password": "s3cret", "database": 2}

	if got := opts.Display("password"); got != "********" {
		t.Errorf("Display(password) = %q, want masked value", got)
	}
	if got := opts.Display("database"); got != "2" {
		t.Errorf("Display(database) = %q, want 2", got)
	}
	if got := opts.Display("missing"); got != "" {
		t.Errorf("Display(missing) = %q, want empty", got)
	}
}
