package main

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logging.Level
	}{
		{"debug", logging.LevelDebug},
		{"info", logging.LevelInfo},
		{"warn", logging.LevelWarn},
		{"error", logging.LevelError},
		{"bogus", logging.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLogFormat(t *testing.T) {
	if parseLogFormat("json") != logging.FormatJSON {
		t.Error("expected JSON format")
	}
	if parseLogFormat("text") != logging.FormatText {
		t.Error("expected text format")
	}
}

func TestServeFlagsHonorEnvironment(t *testing.T) {
	t.Setenv("READER_PORT", "9091")
	t.Setenv("READER_RATE", "1.5")
	t.Setenv("READER_WRAP_DELAY", "500ms")

	var cli struct {
		Serve ServeCmd `cmd:""`
	}
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatalf("build parser: %v", err)
	}

	if _, err := parser.Parse([]string{"serve"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cli.Serve.Port != 9091 {
		t.Errorf("Port = %d, want 9091 from READER_PORT", cli.Serve.Port)
	}
	if cli.Serve.Rate != 1.5 {
		t.Errorf("Rate = %v, want 1.5 from READER_RATE", cli.Serve.Rate)
	}
	if cli.Serve.WrapDelay != 500*time.Millisecond {
		t.Errorf("WrapDelay = %v, want 500ms from READER_WRAP_DELAY", cli.Serve.WrapDelay)
	}
}

func TestServeExplicitFlagBeatsEnvironment(t *testing.T) {
	t.Setenv("READER_PORT", "9091")

	var cli struct {
		Serve ServeCmd `cmd:""`
	}
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatalf("build parser: %v", err)
	}

	if _, err := parser.Parse([]string{"serve", "--port=7000"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cli.Serve.Port != 7000 {
		t.Errorf("Port = %d, want explicit flag to win over READER_PORT", cli.Serve.Port)
	}
}

func TestLabel(t *testing.T) {
	c := &corpus.Corpus{
		Books: []*corpus.Book{
			{ID: "gen", DisplayName: "Genesis", Chapters: [][]string{{"a", "b"}}},
		},
	}
	got := label(c, corpus.Address{Book: 0, Chapter: 0, Verse: 1})
	if got != "Genesis 1:2" {
		t.Errorf("label = %q, want %q", got, "Genesis 1:2")
	}
}
