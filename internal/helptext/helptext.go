// Package helptext renders the embedded help pages.
package helptext

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed content/*.md
var content embed.FS

// FallbackMessage is shown in place of a page that cannot be rendered.
const FallbackMessage = "Failed to load help content"

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Topics lists the available help pages.
func Topics() []string {
	entries, err := content.ReadDir("content")
	if err != nil {
		return nil
	}
	var topics []string
	for _, e := range entries {
		topics = append(topics, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics
}

// Source returns the markdown of a help page.
func Source(topic string) (string, error) {
	data, err := content.ReadFile("content/" + topic + ".md")
	if err != nil {
		return "", fmt.Errorf("unknown help topic %q (available: %s)", topic, strings.Join(Topics(), ", "))
	}
	return string(data), nil
}

// Render returns a help page as HTML. Single newlines become line breaks.
func Render(topic string) (string, error) {
	src, err := Source(topic)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render %s: %w", topic, err)
	}
	return buf.String(), nil
}
