package domain

import "fmt"

// FallbackEmbedHTML returns the minimal blockquote markup used whenever the
// embed provider cannot be reached. The provider's own widget script can still
// upgrade this markup client-side, so a card rendered from it is never empty.
// Both the proxy endpoint and the testimonial generator substitute this on any
// fetch failure, which keeps embed fetching infallible from the caller's view.
func FallbackEmbedHTML(postURL string) string {
	return fmt.Sprintf("<blockquote class=\"twitter-tweet\" data-theme=\"light\">\n  <a href=\"%s\"></a>\n</blockquote>", postURL)
}
