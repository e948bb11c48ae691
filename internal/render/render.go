// Package render turns transcript entries into the HTML fragments carried by
// push events and served on the index page. Assistant text is rendered as
// markdown; user text is escaped verbatim.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/yavens/rig-chat-client/internal/conversation"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds the parsed templates and the markdown converter.
type Renderer struct {
	tpl *template.Template
	md  goldmark.Markdown
}

// messageView is the template model for a single transcript entry.
type messageView struct {
	Index   int
	Role    conversation.Role
	Content template.HTML
}

type indexView struct {
	ChatHistory template.HTML
}

type promptView struct {
	Prompt string
}

func New() (*Renderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		tpl: tpl,
		md: goldmark.New(
			// Unsafe is required so the img markup spliced into tool
			// placeholders survives the markdown pass.
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe()),
		),
	}, nil
}

// Message renders one transcript entry, carrying its index so the client can
// address later update_message events at it.
func (r *Renderer) Message(index int, msg conversation.Message) (string, error) {
	return r.execute("message.html", r.view(index, msg))
}

// History renders the full transcript.
func (r *Renderer) History(messages []conversation.Message) (string, error) {
	var b strings.Builder
	for i, msg := range messages {
		rendered, err := r.Message(i, msg)
		if err != nil {
			return "", err
		}
		b.WriteString(rendered)
	}
	return b.String(), nil
}

// Index renders the whole site page with the transcript embedded.
func (r *Renderer) Index(messages []conversation.Message) (string, error) {
	history, err := r.History(messages)
	if err != nil {
		return "", err
	}
	return r.execute("index.html", indexView{ChatHistory: template.HTML(history)})
}

// Recording renders the in-progress recording widget.
func (r *Renderer) Recording() (string, error) {
	return r.execute("recording.html", nil)
}

// FilledPrompt renders the prompt form pre-filled with transcribed text.
func (r *Renderer) FilledPrompt(prompt string) (string, error) {
	return r.execute("prompt.html", promptView{Prompt: prompt})
}

// TextSpan wraps an escaped text chunk for an update_message event.
func (r *Renderer) TextSpan(chunk string) string {
	return `<span class="text">` + html.EscapeString(chunk) + `</span>`
}

// HTMLSpan wraps an already-rendered fragment, used when patching a tool
// placeholder with markup such as an image tag.
func (r *Renderer) HTMLSpan(fragment string) string {
	return `<span class="text">` + fragment + `</span>`
}

// Image renders the img tag spliced into a generate_image placeholder.
func (r *Renderer) Image(src string) string {
	return fmt.Sprintf(`<img src="%s"/>`, html.EscapeString(src))
}

func (r *Renderer) view(index int, msg conversation.Message) messageView {
	v := messageView{Index: index, Role: msg.Role}
	if msg.Role == conversation.RoleAssistant {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(msg.Content), &buf); err == nil {
			v.Content = template.HTML(buf.String())
			return v
		}
	}
	v.Content = template.HTML(html.EscapeString(msg.Content))
	return v
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
