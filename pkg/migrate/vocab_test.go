package migrate

import "testing"

func TestDateFormat(t *testing.T) {
	tests := []struct {
		name        string
		granularity string
		want        string
	}{
		{
			name:        "year only",
			granularity: "%Y",
			want:        "yyyy",
		},
		{
			name:        "year and month",
			granularity: "%Y-%m",
			want:        "MMMM yyyy",
		},
		{
			name:        "full date",
			granularity: "%Y-%m-%d",
			want:        "MMMM d, yyyy",
		},
		{
			name:        "empty granularity",
			granularity: "",
			want:        "MMMM d, yyyy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dateFormat(tt.granularity); got != tt.want {
				t.Fatalf("unexpected format: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpinionNamePrefixes(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "dissent",
			code: "040dissent",
			want: "Dissent",
		},
		{
			name: "concurrence in part keeps source spelling",
			code: "035concurrenceinpart",
			want: "In Part Opinion",
		},
		{
			name: "unknown code has no prefix",
			code: "999unknown",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := opinionTypes[tt.code]; got != tt.want {
				t.Fatalf("unexpected prefix: got %q, want %q", got, tt.want)
			}
		})
	}
}
