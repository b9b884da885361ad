package format

import (
	"strings"
	"testing"

	"taskdesk/app/pkg/types"
)

func TestShortenMessageKeepsShortText(t *testing.T) {
	msg := "Короткое сообщение."
	if got := ShortenMessage(msg, 0); got != msg {
		t.Fatalf("short text changed: %q", got)
	}
}

func TestShortenMessageCutsAtSentence(t *testing.T) {
	msg := strings.Repeat("Первое предложение. ", 20)
	got := ShortenMessage(msg, 100)
	if len([]rune(got)) > 100 {
		t.Fatalf("result too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "..") {
		t.Fatalf("sentence cut marker missing: %q", got)
	}
}

func TestShortenMessageFallsBackToHardCut(t *testing.T) {
	// One unbroken sentence cannot be cut at a boundary.
	msg := strings.Repeat("а", 300)
	got := ShortenMessage(msg, 50)
	if len([]rune(got)) != 50 {
		t.Fatalf("hard cut length = %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncation marker missing: %q", got)
	}
}

func TestChunkButtons(t *testing.T) {
	buttons := []types.Button{
		{Label: "1"}, {Label: "2"}, {Label: "3"}, {Label: "4"}, {Label: "5"},
	}
	rows := ChunkButtons(buttons, 0)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if len(rows[0]) != 2 || len(rows[1]) != 2 || len(rows[2]) != 1 {
		t.Fatalf("unexpected row sizes: %v", rows)
	}

	if rows := ChunkButtons(nil, 2); rows != nil {
		t.Fatalf("empty input should produce no rows: %v", rows)
	}
}
