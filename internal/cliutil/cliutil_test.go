package cliutil

import (
	"flag"
	"reflect"
	"testing"
)

func newFS() *flag.FlagSet {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.Bool("half", false, "")
	fs.String("device", "", "")
	return fs
}

func TestSplitFlagsAndPositionals(t *testing.T) {
	fs := newFS()
	flags, pos := SplitFlagsAndPositionals(fs, []string{
		"model", "--device", "cuda", "reads", "--half",
	})
	if !reflect.DeepEqual(pos, []string{"model", "reads"}) {
		t.Fatalf("positionals: %v", pos)
	}
	if !reflect.DeepEqual(flags, []string{"--device", "cuda", "--half"}) {
		t.Fatalf("flags: %v", flags)
	}
}

func TestSplitFlagsAndPositionals_DoubleDash(t *testing.T) {
	fs := newFS()
	_, pos := SplitFlagsAndPositionals(fs, []string{"--half", "--", "--device"})
	if !reflect.DeepEqual(pos, []string{"--device"}) {
		t.Fatalf("positionals after --: %v", pos)
	}
}

func TestSplitFlagsAndPositionals_EqualsForm(t *testing.T) {
	fs := newFS()
	flags, pos := SplitFlagsAndPositionals(fs, []string{"--device=cpu", "m", "r"})
	if !reflect.DeepEqual(flags, []string{"--device=cpu"}) || len(pos) != 2 {
		t.Fatalf("flags=%v pos=%v", flags, pos)
	}
}
