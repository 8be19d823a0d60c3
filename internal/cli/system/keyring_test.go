package system

import "testing"

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://crew:s3cret@db:5432/crewplan", "postgres://crew:****@db:5432/crewplan"},
		{"postgresql://crew@db/crewplan", "postgresql://crew@db/crewplan"},
		{"host=db user=crew password=s3cret dbname=crewplan", "host=db user=crew password=**** dbname=crewplan"},
		{"host=db user=crew", "host=db user=crew"},
	}
	for _, tt := range tests {
		if got := maskPassword(tt.in); got != tt.want {
			t.Errorf("maskPassword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret("abcdef123456"); got != "ab********56" {
		t.Errorf("unexpected mask %q", got)
	}
	if got := maskSecret("abc"); got != "****" {
		t.Errorf("short secrets must be fully masked, got %q", got)
	}
}
