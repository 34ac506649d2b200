package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"  file:shop.db  ":        "file:shop.db",
		`"file:shop.db"`:          "file:shop.db",
		"postgres://u:p@h/dbname": "postgres://u:p@h/dbname",
		"host=localhost user=app dbname=shop": "host=localhost user=app dbname=shop sslmode=disable",
		"host=localhost   dbname=shop sslmode=require": "host=localhost dbname=shop sslmode=require",
	}
	for in, want := range cases {
		if got := NormalizeDSN(in); got != want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsPostgresDSN(t *testing.T) {
	if !isPostgresDSN("postgres://u:p@h/db") {
		t.Errorf("url form not detected")
	}
	if !isPostgresDSN("host=localhost dbname=shop") {
		t.Errorf("kv form not detected")
	}
	if isPostgresDSN("file:shop.db") {
		t.Errorf("sqlite URI misdetected as postgres")
	}
}
