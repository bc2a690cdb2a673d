package whatsapp

// WhatsApp Cloud API webhook payload types. Field names follow the
// Meta webhook wire format exactly.

// ObjectBusinessAccount is the only top-level object value this gateway
// processes.
const ObjectBusinessAccount = "whatsapp_business_account"

// FieldMessages is the change field carrying inbound messages and
// delivery statuses.
const FieldMessages = "messages"

// WebhookPayload is the top-level event delivery from the platform.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue holds the message and status data for a change.
type ChangeValue struct {
	MessagingProduct string         `json:"messaging_product"`
	Metadata         Metadata       `json:"metadata"`
	Contacts         []Contact      `json:"contacts,omitempty"`
	Messages         []Message      `json:"messages,omitempty"`
	Statuses         []StatusUpdate `json:"statuses,omitempty"`
}

// Metadata identifies the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's WhatsApp contact card.
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

type ContactProfile struct {
	Name string `json:"name"`
}

// Message is an inbound message. The payload is a tagged union: Type
// names the key that carries the content (text, image, button, ...).
type Message struct {
	From      string         `json:"from"`
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Type      string         `json:"type"`
	Text      *TextContent   `json:"text,omitempty"`
	Image     *MediaContent  `json:"image,omitempty"`
	Button    *ButtonContent `json:"button,omitempty"`
}

// TextContent holds a text message body.
type TextContent struct {
	Body string `json:"body"`
}

// MediaContent holds image/media metadata. The media bytes themselves
// are fetched separately via the media API.
type MediaContent struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	Caption  string `json:"caption,omitempty"`
}

// ButtonContent is a quick-reply button press.
type ButtonContent struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

// StatusUpdate reports a delivery-state transition for an outbound
// message: sent → delivered → read, or failed.
type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}
