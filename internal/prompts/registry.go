package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.md
var templateFS embed.FS

// Template pairs a system instruction with a user-prompt body. Bodies live in
// embedded markdown files and use {{var}} placeholders.
type Template struct {
	Name   string
	System string
	Body   string
}

// system instructions per template; the body carries the JSON contract.
var systemInstructions = map[string]string{
	"classify_intent":        "You are an intent classifier for a personal assistant. Answer with JSON only.",
	"todo_extract":           "You extract todo items from natural language. Answer with JSON only.",
	"todo_extract_batch":     "You extract todo items from natural language. Answer with a JSON array only.",
	"todo_datetime":          "You extract dates and deadlines from natural language. Answer with JSON only.",
	"todo_match":             "You match a user request against existing todos. Answer with JSON only.",
	"todo_query":             "You extract todo query filters from natural language. Answer with JSON only.",
	"link_extract":           "You summarize shared links. Answer with JSON only.",
	"knowledge_extract":      "You summarize captured notes. Answer with JSON only.",
	"life_extract":           "You summarize captured notes. Answer with JSON only.",
	"music_extract":          "You summarize captured notes. Answer with JSON only.",
	"insight_extract":        "You summarize captured notes. Answer with JSON only.",
	"content_extract":        "You summarize captured notes. Answer with JSON only.",
	"feedback_extract":       "You analyze user feedback. Answer with JSON only.",
	"recommendation_extract": "You analyze recommendation requests. Answer with JSON only.",
	"history_keywords":       "You extract search keywords. Answer with JSON only.",
	"chat_answer":            "You are a helpful personal assistant.",
	"history_answer":         "You answer questions from the user's own records.",
}

// Registry maps template names to renderable prompt templates. Pure and
// stateless after construction.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry loads every embedded template. Missing system instructions or
// unreadable files are configuration errors and fail construction.
func NewRegistry() (*Registry, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	registry := &Registry{templates: make(map[string]*Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		system, ok := systemInstructions[name]
		if !ok {
			return nil, fmt.Errorf("template %s has no system instruction", name)
		}
		registry.templates[name] = &Template{
			Name:   name,
			System: system,
			Body:   string(content),
		}
	}

	for name := range systemInstructions {
		if _, ok := registry.templates[name]; !ok {
			return nil, fmt.Errorf("template file missing for %s", name)
		}
	}

	return registry, nil
}

// Has reports whether a template with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render substitutes vars into the named template body and returns the system
// instruction plus the rendered user prompt.
func (r *Registry) Render(name string, vars map[string]string) (system, user string, err error) {
	template, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("prompt template %q not found", name)
	}

	user = template.Body
	for key, value := range vars {
		user = strings.ReplaceAll(user, "{{"+key+"}}", value)
	}
	return template.System, strings.TrimSpace(user), nil
}

// Names returns all registered template names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
