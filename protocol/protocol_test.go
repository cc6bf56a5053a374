package protocol

import "testing"

func TestParseGet(t *testing.T) {
	c, err := Parse("GET alpha")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Kind != Get || c.Key != "alpha" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseSetWithSpacesInValue(t *testing.T) {
	c, err := Parse("SET alpha hello world")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Kind != Set || c.Key != "alpha" || c.Value != "hello world" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseDel(t *testing.T) {
	c, err := Parse("DEL alpha")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Kind != Del || c.Key != "alpha" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	if _, err := Parse("PING x"); err != ErrUnknownCommand {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestParseMissingKey(t *testing.T) {
	if _, err := Parse("GET "); err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParseSetMissingValueSeparator(t *testing.T) {
	if _, err := Parse("SET alpha"); err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParseNoSpaceAtAll(t *testing.T) {
	if _, err := Parse("GET"); err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}
