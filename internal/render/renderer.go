// Package render produces the widget's HTML: testimonial cards, embed
// wrappers, navigation controls and the page summary. Rendering is pure; it
// reads carousel state and an embed cache but mutates neither.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/testimonialhq/widget-service/internal/domain"
)

// EmbedLookup resolves previously fetched embed markup for a post URL. It is
// satisfied by carousel.EmbedCache.
type EmbedLookup interface {
	Get(url string) (html string, resolved bool)
	Loaded(url string) bool
}

// Page is the render input: the visible slice of a carousel plus enough
// pagination state to draw the controls.
type Page struct {
	Testimonials []domain.Testimonial
	PageIndex    int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int

	ShowNavigation bool
	ShowPagination bool
	Theme          string
}

// Renderer renders widget pages. Safe for concurrent use once constructed.
type Renderer struct {
	tmpl   *template.Template
	embeds EmbedLookup
}

// New creates a renderer backed by the given embed lookup. A nil lookup
// renders every embed testimonial as the fallback card.
func New(embeds EmbedLookup) (*Renderer, error) {
	tmpl, err := template.New("widget").Funcs(template.FuncMap{
		"inc":   func(i int) int { return i + 1 },
		"until": untilSeq,
	}).Parse(widgetTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing widget template: %w", err)
	}

	return &Renderer{tmpl: tmpl, embeds: embeds}, nil
}

// Render produces the HTML for one widget page.
func (r *Renderer) Render(page Page) (string, error) {
	var sb strings.Builder

	err := r.tmpl.Execute(&sb, r.buildView(page))
	if err != nil {
		return "", fmt.Errorf("rendering widget page: %w", err)
	}

	return sb.String(), nil
}

// PageInfo returns the textual page summary, e.g. "Page 1 of 3 (7
// testimonials)".
func PageInfo(pageIndex, totalPages, totalItems int) string {
	return fmt.Sprintf("Page %d of %d (%d testimonials)", pageIndex+1, totalPages, totalItems)
}

type cardView struct {
	// Embed is non-empty when the testimonial renders as provider markup.
	Embed template.HTML

	// Fallback marks an embed whose markup never loaded.
	Fallback bool

	Testimonial domain.Testimonial
	Stars       []bool
}

type pageView struct {
	Cards []cardView

	Empty bool

	PageIndex  int
	TotalPages int
	PageInfo   string

	ShowArrows bool
	ShowDots   bool
	Theme      string
}

func (r *Renderer) buildView(page Page) pageView {
	view := pageView{
		Empty:      len(page.Testimonials) == 0 && page.TotalItems == 0,
		PageIndex:  page.PageIndex,
		TotalPages: page.TotalPages,
		PageInfo:   PageInfo(page.PageIndex, page.TotalPages, page.TotalItems),
		ShowArrows: page.ShowNavigation && page.TotalItems > page.ItemsPerPage,
		ShowDots:   page.ShowPagination && page.TotalPages > 1,
		Theme:      page.Theme,
	}

	for _, item := range page.Testimonials {
		view.Cards = append(view.Cards, r.buildCard(item))
	}

	return view
}

func (r *Renderer) buildCard(item domain.Testimonial) cardView {
	if item.IsEmbed {
		if r.embeds != nil {
			if html, ok := r.embeds.Get(item.OriginalURL); ok && r.embeds.Loaded(item.OriginalURL) {
				// Provider markup is trusted as-is; it carries its
				// own styling and script hooks.
				return cardView{Embed: template.HTML(html), Testimonial: item}
			}
		}

		return cardView{Fallback: true, Testimonial: item}
	}

	card := cardView{Testimonial: item}

	if item.Rating > 0 {
		card.Stars = make([]bool, domain.MaxRating)
		for i := 0; i < item.Rating && i < domain.MaxRating; i++ {
			card.Stars[i] = true
		}
	}

	return card
}

func untilSeq(n int) []int {
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}

	return seq
}

const widgetTemplate = `{{- if .Empty -}}
<div class="testimonial-widget-empty">
  <p>No testimonials to display.</p>
</div>
{{- else -}}
<div class="testimonial-widget" data-theme="{{.Theme}}">
  {{- if .ShowArrows}}
  <button class="carousel-prev" aria-label="Previous testimonials">&#8249;</button>
  <button class="carousel-next" aria-label="Next testimonials">&#8250;</button>
  {{- end}}
  <div class="testimonial-grid">
    {{- range .Cards}}
    {{- if .Embed}}
    <div class="twitter-embed-container">{{.Embed}}</div>
    {{- else if .Fallback}}
    <div class="testimonial-card testimonial-card-fallback">
      <p>Failed to load Twitter embed</p>
      <a href="{{.Testimonial.OriginalURL}}" target="_blank" rel="noopener noreferrer">View Tweet</a>
    </div>
    {{- else}}
    <div class="testimonial-card">
      <div class="testimonial-header">
        <img class="testimonial-avatar" src="{{.Testimonial.Avatar}}" alt="{{.Testimonial.Name}}" />
        <div class="testimonial-author">
          <h4>{{.Testimonial.Name}}</h4>
          {{- with .Testimonial.Title}}
          <p class="testimonial-title">{{.}}</p>
          {{- end}}
          {{- with .Testimonial.Handle}}
          <p class="testimonial-handle">{{.}}</p>
          {{- end}}
        </div>
      </div>
      {{- if .Stars}}
      <div class="testimonial-rating">
        {{- range .Stars}}<span class="star{{if .}} star-filled{{end}}">&#9733;</span>{{- end}}
      </div>
      {{- end}}
      <p class="testimonial-content">{{.Testimonial.Content}}</p>
      <span class="testimonial-date">{{.Testimonial.Date}}</span>
    </div>
    {{- end}}
    {{- end}}
  </div>
  {{- if .ShowDots}}
  <div class="carousel-dots">
    {{- $page := .PageIndex}}
    {{- range until .TotalPages}}
    <button class="carousel-dot{{if eq . $page}} carousel-dot-active{{end}}" data-page="{{.}}" aria-label="Go to page {{inc .}}"></button>
    {{- end}}
  </div>
  <div class="carousel-page-info">{{.PageInfo}}</div>
  {{- end}}
</div>
{{- end}}`
