package dto

// GenerateEmbedRequest asks the service to resolve a post URL into embed
// markup. Only presence is validated here: an unresolvable URL still gets a
// fallback response, so rejecting it up front would break widgets that embed
// unusual but fetchable post links.
type GenerateEmbedRequest struct {
	TweetURL string `json:"tweetUrl" validate:"required"`
}

// GenerateEmbedResponse carries the resolved embed markup. On provider
// failure this still returns 200 with fallback markup; the widget script
// upgrades the fallback client-side.
type GenerateEmbedResponse struct {
	HTML string `json:"html"`
}

// GenerateTestimonialRequest asks the service to build a full embed
// testimonial from a post URL.
type GenerateTestimonialRequest struct {
	URL string `json:"url" validate:"required,posturl"`
}
