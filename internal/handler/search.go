package handler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"vox/internal/auth"
	"vox/internal/nlu"
)

const DefaultSearchURL = "https://www.google.com/search?q={query}"

var searchKeywords = newKeywordSet(nlu.WebSearch.Keywords())

var searchFillers = []string{
	"for", "about", "on", "the web", "online", "info", "information", "me",
}

type Search struct {
	browser  Browser
	template string
}

// NewSearch opens searches through browser. The template must contain
// {query}; an empty template uses Google.
func NewSearch(browser Browser, template string) *Search {
	if template == "" || !strings.Contains(template, "{query}") {
		template = DefaultSearchURL
	}
	return &Search{browser: browser, template: template}
}

func (s *Search) Handle(ctx context.Context, cmd nlu.Command, _ auth.Privilege) nlu.Result {
	query := s.Query(cmd.Text)
	if query == "" {
		return nlu.Missing(nlu.WebSearch, "What would you like me to search for?")
	}

	if err := s.browser.OpenURL(ctx, s.URL(query)); err != nil {
		return nlu.Failed(nlu.WebSearch, "I had trouble performing that search.", fmt.Errorf("open search: %w", err))
	}

	return nlu.Done(nlu.WebSearch, fmt.Sprintf("I've opened a web browser with search results for %s.", query))
}

// Query extracts the search terms from normalized text.
func (s *Search) Query(text string) string {
	rest, ok := searchKeywords.after(text)
	if !ok {
		return ""
	}
	return trimPunct(trimFillers(rest, searchFillers))
}

func (s *Search) URL(query string) string {
	return strings.ReplaceAll(s.template, "{query}", url.QueryEscape(query))
}
