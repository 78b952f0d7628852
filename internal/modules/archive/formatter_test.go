package archive

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"

	discordDomain "github.com/TheStevenMiller/Discord-Bot/internal/modules/discord/domain"
)

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	f := NewFormatter(loc)
	f.now = func() time.Time {
		return time.Date(2026, 8, 24, 10, 30, 0, 0, loc)
	}
	return f
}

func simpleMessage(id, content string) discordDomain.Message {
	return discordDomain.Message{
		ID:        id,
		Author:    discordDomain.Author{Username: "alice", Discriminator: "0001"},
		Content:   content,
		Timestamp: "2026-08-24T14:00:00+00:00",
	}
}

func TestFormat_HeaderAndMessageBlocks(t *testing.T) {
	f := newTestFormatter(t)
	messages := []discordDomain.Message{
		simpleMessage("1", "first"),
		simpleMessage("2", "second"),
		simpleMessage("3", "third"),
	}

	out := f.Format(messages, &discordDomain.Channel{ID: "123", Name: "general"})

	if n := strings.Count(out, `<div class="header">`); n != 1 {
		t.Errorf("expected exactly one header block, got %d", n)
	}
	if n := strings.Count(out, `<div class="message" data-message-id=`); n != 3 {
		t.Errorf("expected 3 message blocks, got %d", n)
	}

	// Input order preserved
	first := strings.Index(out, `data-message-id="1"`)
	second := strings.Index(out, `data-message-id="2"`)
	third := strings.Index(out, `data-message-id="3"`)
	if first < 0 || second < 0 || third < 0 || !(first < second && second < third) {
		t.Errorf("message blocks out of order: %d %d %d", first, second, third)
	}

	if !strings.Contains(out, "Channel: general (123)") {
		t.Error("header missing channel name and id")
	}
}

func TestFormat_Pluralization(t *testing.T) {
	f := newTestFormatter(t)

	out := f.Format(nil, nil)
	if !strings.Contains(out, "0 new messages") {
		t.Error("zero messages should pluralize")
	}

	out = f.Format([]discordDomain.Message{simpleMessage("1", "hi")}, nil)
	if !strings.Contains(out, "1 new message<") {
		t.Error("one message should be singular")
	}

	out = f.Format([]discordDomain.Message{simpleMessage("1", "a"), simpleMessage("2", "b")}, nil)
	if !strings.Contains(out, "2 new messages") {
		t.Error("two messages should pluralize")
	}
}

func TestFormat_UnknownChannel(t *testing.T) {
	f := newTestFormatter(t)

	out := f.Format(nil, nil)
	if !strings.Contains(out, "Channel: Unknown (Unknown)") {
		t.Error("absent channel info should render Unknown placeholders")
	}
}

func TestFormat_EscapesScriptContent(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "<script>alert(1)</script>")

	out := f.Format([]discordDomain.Message{msg}, nil)

	if strings.Contains(out, "<script>") {
		t.Error("script tag must never appear unescaped")
	}
	if !strings.Contains(out, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Error("script content should appear escaped")
	}
}

func TestFormat_EscapesUsernameAndEmbedText(t *testing.T) {
	f := newTestFormatter(t)
	msg := discordDomain.Message{
		ID:     "1",
		Author: discordDomain.Author{Username: `eve<&">`, Discriminator: "0002"},
		Embeds: []discordDomain.Embed{{
			Title:       lo.ToPtr(`title <b>`),
			Description: lo.ToPtr(`desc & more`),
			Footer:      &discordDomain.EmbedFooter{Text: `foot "quoted"`},
		}},
	}

	out := f.Format([]discordDomain.Message{msg}, nil)

	for _, raw := range []string{`eve<&">`, "title <b>", `foot "quoted"`} {
		if strings.Contains(out, raw) {
			t.Errorf("unescaped user text in output: %q", raw)
		}
	}
	if !strings.Contains(out, "desc &amp; more") {
		t.Error("embed description should be escaped")
	}
}

func TestFormat_NewlinesBecomeBreaks(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "A\nB\nC")

	out := f.Format([]discordDomain.Message{msg}, nil)

	if !strings.Contains(out, "A<br>B<br>C") {
		t.Error("newlines in content should become <br>")
	}
	if strings.Contains(out, "A\nB") {
		t.Error("no literal newline may remain inside the content field")
	}
}

func TestFormat_EmptyContentOmitted(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "")

	out := f.Format([]discordDomain.Message{msg}, nil)

	if strings.Contains(out, `<div class="content">`) {
		t.Error("empty content should not render a content block")
	}
}

func TestFormat_TimestampConversion(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "hi")
	msg.Timestamp = "2026-01-15T15:00:00.000000+00:00"

	out := f.Format([]discordDomain.Message{msg}, nil)

	// 15:00 UTC on a January day is 10:00 AM Eastern
	if !strings.Contains(out, "2026-01-15 10:00:00 AM EST") {
		t.Errorf("timestamp not converted to configured zone:\n%s", out)
	}
}

func TestFormat_TimestampZuluSuffix(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "hi")
	msg.Timestamp = "2026-08-24T14:00:00Z"

	out := f.Format([]discordDomain.Message{msg}, nil)

	if !strings.Contains(out, "2026-08-24 10:00:00 AM EDT") {
		t.Errorf("Z-suffixed timestamp not converted:\n%s", out)
	}
}

func TestFormat_UnparsableTimestampFallsBack(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "hi")
	msg.Timestamp = "not-a-timestamp"

	out := f.Format([]discordDomain.Message{msg}, nil)

	if !strings.Contains(out, "not-a-timestamp") {
		t.Error("unparsable timestamp should be emitted raw")
	}
}

func TestFormat_MissingTimestampAndAuthorDefaults(t *testing.T) {
	f := newTestFormatter(t)
	msg := discordDomain.Message{ID: "1", Content: "hi"}

	out := f.Format([]discordDomain.Message{msg}, nil)

	if !strings.Contains(out, "Unknown#0000") {
		t.Error("missing author should default to Unknown#0000")
	}
	if !strings.Contains(out, `<span class="timestamp">Unknown</span>`) {
		t.Error("missing timestamp should render Unknown")
	}
}

func TestFormat_Attachments(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "")
	msg.Attachments = []discordDomain.Attachment{
		{Filename: "report <1>.pdf", URL: "https://cdn.example/report.pdf", Size: 2048},
	}

	out := f.Format([]discordDomain.Message{msg}, nil)

	if !strings.Contains(out, "report &lt;1&gt;.pdf") {
		t.Error("attachment filename should be escaped")
	}
	if !strings.Contains(out, `href="https://cdn.example/report.pdf"`) {
		t.Error("attachment URL should be linked")
	}
	if !strings.Contains(out, "(2.00 KB)") {
		t.Error("attachment size should be formatted")
	}
}

func TestFormat_EmbedFieldsAndLinkedTitle(t *testing.T) {
	f := newTestFormatter(t)
	msg := simpleMessage("1", "")
	msg.Embeds = []discordDomain.Embed{{
		Title: lo.ToPtr("Release notes"),
		URL:   lo.ToPtr("https://example.com/notes"),
		Fields: []discordDomain.EmbedField{
			{Name: "Version", Value: "1.0\n2.0", Inline: true},
			{Name: "Status", Value: "done", Inline: false},
		},
	}}

	out := f.Format([]discordDomain.Message{msg}, nil)

	if !strings.Contains(out, `<a href="https://example.com/notes" target="_blank" rel="noopener noreferrer">Release notes</a>`) {
		t.Error("embed title should be a link when URL is present")
	}
	if !strings.Contains(out, "1.0<br>2.0") {
		t.Error("field values should convert newlines to breaks")
	}
	if !strings.Contains(out, `class="embed-field inline"`) {
		t.Error("inline fields should carry the inline class")
	}
	if !strings.Contains(out, `<div class="embed-field">`) {
		t.Error("block fields should not carry the inline class")
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 bytes"},
		{500, "500 bytes"},
		{1023, "1023 bytes"},
		{1024, "1.00 KB"},
		{102400, "100.00 KB"},
		{1048575, "1024.00 KB"},
		{1048576, "1.00 MB"},
		{5242880, "5.00 MB"},
	}

	for _, tc := range cases {
		if got := FormatSize(tc.size); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestFormat_Deterministic(t *testing.T) {
	f := newTestFormatter(t)
	messages := []discordDomain.Message{simpleMessage("1", "hello")}
	channel := &discordDomain.Channel{ID: "123", Name: "general"}

	if f.Format(messages, channel) != f.Format(messages, channel) {
		t.Error("rendering must be deterministic for a fixed clock")
	}
}

func TestArtifactPath(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	now := time.Date(2026, 8, 24, 16, 5, 9, 0, loc)

	got := ArtifactPath("123456", now)
	want := "Discord_Messages/unread_messages_123456_2026-08-24_16-05-09.html"
	if got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}
}
