// Copyright (C) 2017 ScyllaDB

package cfgutil

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseYAMLMergesFiles(t *testing.T) {
	a := writeFile(t, "a.yaml", "host: 127.0.0.1\nport: 9042\n")
	b := writeFile(t, "b.yaml", "port: 19042\n")

	c := testConfig{Password: "default"}
	if err := ParseYAML(&c, a, "/not/existing.yaml", b); err != nil {
		t.Fatal(err)
	}
	golden := testConfig{Host: "127.0.0.1", Port: 19042, Password: "default"}
	if c != golden {
		t.Fatalf("ParseYAML() = %+v, expected %+v", c, golden)
	}
}

func TestParseYAMLExpandsEnv(t *testing.T) {
	t.Setenv("CFGUTIL_TEST_PASSWORD", "secret")
	f := writeFile(t, "a.yaml", "password: ${CFGUTIL_TEST_PASSWORD}\nhost: ${CFGUTIL_TEST_HOST:localhost}\n")

	var c testConfig
	if err := ParseYAML(&c, f); err != nil {
		t.Fatal(err)
	}
	if c.Password != "secret" || c.Host != "localhost" {
		t.Fatalf("ParseYAML() = %+v", c)
	}
}

func TestParseYAMLNoFiles(t *testing.T) {
	c := testConfig{Port: 1}
	if err := ParseYAML(&c, "/not/existing.yaml"); err != nil {
		t.Fatal(err)
	}
	if c.Port != 1 {
		t.Fatalf("ParseYAML() = %+v, expected unchanged", c)
	}
}

func TestParseYAMLDirectory(t *testing.T) {
	if err := ParseYAML(&testConfig{}, t.TempDir()); err == nil {
		t.Fatal("ParseYAML() expected error")
	}
}
