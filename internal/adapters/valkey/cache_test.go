package valkey

import "testing"

func TestKeyspace(t *testing.T) {
	cases := map[string]string{
		"reports:id:42":       "reports",
		"spread:latest:delhi": "spread",
		"plain":               "plain",
		":leading":            ":leading",
		"":                    "",
	}
	for key, want := range cases {
		if got := keyspace(key); got != want {
			t.Errorf("keyspace(%q) = %q, want %q", key, got, want)
		}
	}
}
