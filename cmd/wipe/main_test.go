package main

import "testing"

func TestReadFlags(t *testing.T) {

	f, err := readFlags([]string{"wipe", "-c", "wipe.toml", "-d", "-t", "none", "blink"})
	if err != nil {
		t.Fatal(err)
	}

	want := flags{config: "wipe.toml", transport: "none", trace: true, program: "blink"}
	if f != want {
		t.Errorf("flags = %+v, want %+v", f, want)
	}

	if _, err := readFlags([]string{"wipe", "a", "b"}); err == nil {
		t.Error("two programs accepted")
	}

	if _, err := readFlags([]string{"wipe", "-x"}); err == nil {
		t.Error("unknown flag accepted")
	}
}
