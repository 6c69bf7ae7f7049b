package prefix

import (
	"reflect"
	"testing"
)

func TestMatch(t *testing.T) {
	names := []string{"version", "verbose", "list", "listall", "Quit"}

	tests := []struct {
		name      string
		typed     string
		exactWins bool
		expected  []string
	}{
		{"ambiguous prefix", "ver", false, []string{"verbose", "version"}},
		{"unique prefix", "versio", false, []string{"version"}},
		{"exact name", "version", false, []string{"version"}},
		{"case insensitive", "QU", false, []string{"Quit"}},
		{"exact is still ambiguous", "list", false, []string{"list", "listall"}},
		{"exact wins", "LIST", true, []string{"list"}},
		{"no match", "xyz", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(names, tt.typed, tt.exactWins)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Match(%q, %v) = %v, expected %v", tt.typed, tt.exactWins, got, tt.expected)
			}
		})
	}
}
