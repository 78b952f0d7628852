package domain

// Message is a single message as returned by the Discord REST API.
// IDs are snowflakes: opaque strings whose ordering follows creation
// time, which makes them usable as fetch cursors.
type Message struct {
	ID          string       `json:"id"`
	Author      Author       `json:"author"`
	Content     string       `json:"content"`
	Timestamp   string       `json:"timestamp"`
	Attachments []Attachment `json:"attachments"`
	Embeds      []Embed      `json:"embeds"`
}

// Author identifies the user who sent a message.
type Author struct {
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// Embed is rich content attached to a message. All scalar fields are
// optional on the wire, so they are modeled as pointers; Fields defaults
// to an empty list.
type Embed struct {
	Title       *string      `json:"title,omitempty"`
	URL         *string      `json:"url,omitempty"`
	Description *string      `json:"description,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField is a single name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}
