// Package archive renders fetched messages into static HTML documents
// and maintains the bucket-side index of stored archives.
package archive

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/samber/lo"

	discordDomain "github.com/TheStevenMiller/Discord-Bot/internal/modules/discord/domain"
)

// timestampLayout matches the original archive format: 12-hour clock
// with AM/PM and the zone abbreviation.
const timestampLayout = "2006-01-02 03:04:05 PM MST"

// Formatter renders messages into a standalone HTML document. Rendering
// is pure: no I/O, no mutation of inputs, and deterministic for a fixed
// clock.
type Formatter struct {
	location *time.Location
	now      func() time.Time
}

func NewFormatter(location *time.Location) *Formatter {
	return &Formatter{
		location: location,
		now:      time.Now,
	}
}

// Format renders messages (already in oldest-first order) into a single
// HTML document. channel may be nil, in which case the header shows
// "Unknown" placeholders. Malformed per-message data degrades to
// placeholder text; Format never fails.
func (f *Formatter) Format(messages []discordDomain.Message, channel *discordDomain.Channel) string {
	retrievedAt := f.now().In(f.location).Format(timestampLayout)

	channelName := "Unknown"
	channelID := "Unknown"
	if channel != nil {
		if channel.Name != "" {
			channelName = channel.Name
		}
		if channel.ID != "" {
			channelID = channel.ID
		}
	}

	plural := lo.Ternary(len(messages) == 1, "", "s")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n")
	b.WriteString("<head>\n")
	fmt.Fprintf(&b, "    <title>Unread Discord Messages - Channel %s</title>\n", html.EscapeString(channelID))
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString(styles)
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("    <div class=\"header\">\n")
	b.WriteString("        <h1>Unread Messages Archive</h1>\n")
	fmt.Fprintf(&b, "        <p>Channel: %s (%s)</p>\n", html.EscapeString(channelName), html.EscapeString(channelID))
	fmt.Fprintf(&b, "        <p>Retrieved: %s</p>\n", html.EscapeString(retrievedAt))
	fmt.Fprintf(&b, "        <p class=\"message-count\">%d new message%s</p>\n", len(messages), plural)
	b.WriteString("    </div>\n")
	b.WriteString("    <div class=\"messages-container\">\n")

	for _, message := range messages {
		f.writeMessage(&b, message)
	}

	b.WriteString("    </div>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	return b.String()
}

func (f *Formatter) writeMessage(b *strings.Builder, message discordDomain.Message) {
	username := message.Author.Username
	if username == "" {
		username = "Unknown"
	}
	discriminator := message.Author.Discriminator
	if discriminator == "" {
		discriminator = "0000"
	}

	fmt.Fprintf(b, "        <div class=\"message\" data-message-id=\"%s\">\n", html.EscapeString(message.ID))
	b.WriteString("            <div class=\"message-header\">\n")
	fmt.Fprintf(b, "                <span class=\"author\">%s#%s</span>\n",
		html.EscapeString(username), html.EscapeString(discriminator))
	fmt.Fprintf(b, "                <span class=\"timestamp\">%s</span>\n",
		html.EscapeString(f.formatTimestamp(message.Timestamp)))
	b.WriteString("            </div>\n")

	if message.Content != "" {
		fmt.Fprintf(b, "            <div class=\"content\">%s</div>\n", escapeWithBreaks(message.Content))
	}

	if len(message.Attachments) > 0 {
		b.WriteString("            <div class=\"attachments\">\n")
		for _, attachment := range message.Attachments {
			f.writeAttachment(b, attachment)
		}
		b.WriteString("            </div>\n")
	}

	if len(message.Embeds) > 0 {
		b.WriteString("            <div class=\"embeds\">\n")
		for _, embed := range message.Embeds {
			f.writeEmbed(b, embed)
		}
		b.WriteString("            </div>\n")
	}

	b.WriteString("        </div>\n")
}

func (f *Formatter) writeAttachment(b *strings.Builder, attachment discordDomain.Attachment) {
	filename := attachment.Filename
	if filename == "" {
		filename = "Unknown"
	}
	url := attachment.URL
	if url == "" {
		url = "#"
	}

	b.WriteString("                <div class=\"attachment\">\n")
	fmt.Fprintf(b, "                    <a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a>\n",
		html.EscapeString(url), html.EscapeString(filename))
	fmt.Fprintf(b, "                    <span class=\"attachment-size\">(%s)</span>\n", FormatSize(attachment.Size))
	b.WriteString("                </div>\n")
}

func (f *Formatter) writeEmbed(b *strings.Builder, embed discordDomain.Embed) {
	b.WriteString("                <div class=\"embed\">\n")

	if embed.Title != nil {
		title := html.EscapeString(*embed.Title)
		if embed.URL != nil {
			fmt.Fprintf(b, "                    <div class=\"embed-title\"><a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a></div>\n",
				html.EscapeString(*embed.URL), title)
		} else {
			fmt.Fprintf(b, "                    <div class=\"embed-title\">%s</div>\n", title)
		}
	}

	if embed.Description != nil {
		fmt.Fprintf(b, "                    <div class=\"embed-description\">%s</div>\n", escapeWithBreaks(*embed.Description))
	}

	if len(embed.Fields) > 0 {
		b.WriteString("                    <div class=\"embed-fields\">\n")
		for _, field := range embed.Fields {
			inlineClass := lo.Ternary(field.Inline, " inline", "")
			fmt.Fprintf(b, "                        <div class=\"embed-field%s\">\n", inlineClass)
			fmt.Fprintf(b, "                            <div class=\"embed-field-name\">%s</div>\n", html.EscapeString(field.Name))
			fmt.Fprintf(b, "                            <div class=\"embed-field-value\">%s</div>\n", escapeWithBreaks(field.Value))
			b.WriteString("                        </div>\n")
		}
		b.WriteString("                    </div>\n")
	}

	if embed.Footer != nil {
		fmt.Fprintf(b, "                    <div class=\"embed-footer\">%s</div>\n", html.EscapeString(embed.Footer.Text))
	}

	b.WriteString("                </div>\n")
}

// formatTimestamp converts a message timestamp into the configured time
// zone. Unparsable timestamps fall back to the raw string rather than
// failing the render.
func (f *Formatter) formatTimestamp(timestamp string) string {
	if timestamp == "" {
		return "Unknown"
	}

	parsed, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}

	return parsed.In(f.location).Format(timestampLayout)
}

// escapeWithBreaks escapes user-supplied text and converts literal
// newlines into break tags.
func escapeWithBreaks(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

// FormatSize renders an attachment size with two-decimal rounding.
// Exactly 1024 bytes is 1.00 KB and exactly 1048576 is 1.00 MB.
func FormatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
	}
}

const styles = `    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: #36393f;
            color: #dcddde;
            margin: 0;
            padding: 20px;
            line-height: 1.6;
        }
        .header {
            background: #2f3136;
            border-bottom: 3px solid #7289da;
            padding: 20px;
            margin: -20px -20px 20px -20px;
        }
        .header h1 {
            margin: 0 0 10px 0;
            color: #ffffff;
            font-size: 28px;
        }
        .header p {
            margin: 5px 0;
            color: #b9bbbe;
        }
        .message-count {
            color: #7289da;
            font-weight: bold;
            font-size: 18px;
        }
        .messages-container {
            max-width: 1200px;
            margin: 0 auto;
        }
        .message {
            background: #40444b;
            margin: 15px 0;
            padding: 15px 20px;
            border-radius: 8px;
            border-left: 4px solid #7289da;
        }
        .author {
            font-weight: bold;
            color: #7289da;
            font-size: 16px;
        }
        .timestamp {
            color: #72767d;
            font-size: 12px;
            margin-left: 10px;
        }
        .content {
            color: #dcddde;
            margin-top: 8px;
            word-wrap: break-word;
        }
        .attachments {
            margin-top: 10px;
        }
        .attachment {
            background: #2f3136;
            padding: 8px 12px;
            margin: 5px 0;
            border-radius: 4px;
            display: inline-block;
        }
        .attachment a {
            color: #00b0f4;
            text-decoration: none;
        }
        .attachment-size {
            color: #72767d;
            font-size: 12px;
            margin-left: 5px;
        }
        .embeds {
            margin-top: 10px;
        }
        .embed {
            background: #2f3136;
            padding: 12px;
            margin: 5px 0;
            border-radius: 4px;
            border-left: 4px solid #5865f2;
        }
        .embed-title {
            font-weight: bold;
            color: #ffffff;
            margin-bottom: 5px;
        }
        .embed-title a {
            color: #00b0f4;
            text-decoration: none;
        }
        .embed-description {
            color: #dcddde;
            margin-bottom: 10px;
        }
        .embed-fields {
            display: flex;
            flex-wrap: wrap;
            gap: 10px;
        }
        .embed-field {
            flex: 1 1 100%;
            min-width: 200px;
        }
        .embed-field.inline {
            flex: 1 1 30%;
        }
        .embed-field-name {
            font-weight: bold;
            color: #b9bbbe;
            margin-bottom: 2px;
        }
        .embed-field-value {
            color: #dcddde;
        }
        .embed-footer {
            color: #72767d;
            font-size: 12px;
            margin-top: 10px;
        }
    </style>
`
