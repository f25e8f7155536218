package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.True(t, s.ShowNavigation)
	assert.True(t, s.ShowPagination)
	assert.False(t, s.AutoSlide)
	assert.Equal(t, 5000, s.SlideIntervalMillis)
	assert.Equal(t, "light", s.Theme)
	assert.Equal(t, 3, s.TestimonialsPerPage)
	require.NoError(t, s.Validate())
}

func TestWidgetSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WidgetSettings)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*WidgetSettings) {}},
		{
			name:    "interval below minimum",
			mutate:  func(s *WidgetSettings) { s.SlideIntervalMillis = 999 },
			wantErr: true,
		},
		{
			name:   "interval at minimum",
			mutate: func(s *WidgetSettings) { s.SlideIntervalMillis = 1000 },
		},
		{
			name:    "unknown theme",
			mutate:  func(s *WidgetSettings) { s.Theme = "sepia" },
			wantErr: true,
		},
		{
			name:   "dark theme",
			mutate: func(s *WidgetSettings) { s.Theme = "dark" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSettingsPatch_Apply(t *testing.T) {
	auto := true
	interval := 2000

	patched := (&SettingsPatch{
		AutoSlide:           &auto,
		SlideIntervalMillis: &interval,
	}).Apply(DefaultSettings())

	assert.True(t, patched.AutoSlide)
	assert.Equal(t, 2000, patched.SlideIntervalMillis)
	// Untouched fields keep their defaults.
	assert.Equal(t, "light", patched.Theme)
	assert.True(t, patched.ShowNavigation)
}

func TestSettingsPatch_NilIsNoop(t *testing.T) {
	var p *SettingsPatch

	assert.Equal(t, DefaultSettings(), p.Apply(DefaultSettings()))
}

func TestTestimonialPatch_Apply(t *testing.T) {
	name := "New Name"
	rating := 4

	base := Testimonial{
		ID:      "t-1",
		Name:    "@jack",
		Content: "great product",
		Rating:  5,
	}

	patched := (&TestimonialPatch{
		Name:   &name,
		Rating: &rating,
	}).Apply(base)

	assert.Equal(t, "New Name", patched.Name)
	assert.Equal(t, 4, patched.Rating)
	// Untouched fields carry over, and the input is not mutated.
	assert.Equal(t, "great product", patched.Content)
	assert.Equal(t, "@jack", base.Name)
}

func TestTestimonialPatch_NilIsNoop(t *testing.T) {
	var p *TestimonialPatch

	base := Testimonial{ID: "t-1", Name: "@jack", Content: "great product"}
	assert.Equal(t, base, p.Apply(base))
}

func TestTestimonial_Validate(t *testing.T) {
	base := Testimonial{
		ID:       "t-1",
		Name:     "@jack",
		Avatar:   AvatarURL("jack"),
		Content:  "great product",
		Date:     "Mar 1, 2026",
		Platform: PlatformTwitter,
	}

	t.Run("plain testimonial ok", func(t *testing.T) {
		tt := base
		require.NoError(t, tt.Validate())
	})

	t.Run("embed requires original url", func(t *testing.T) {
		tt := base
		tt.IsEmbed = true
		err := tt.Validate()
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("embed with original url ok", func(t *testing.T) {
		tt := base
		tt.IsEmbed = true
		tt.OriginalURL = "https://x.com/jack/status/20"
		require.NoError(t, tt.Validate())
	})

	t.Run("rating out of range", func(t *testing.T) {
		tt := base
		tt.Rating = 6
		require.Error(t, tt.Validate())
	})

	t.Run("zero rating means unrated", func(t *testing.T) {
		tt := base
		tt.Rating = 0
		require.NoError(t, tt.Validate())
	})
}

func TestWidget_Testimonial(t *testing.T) {
	w := Widget{
		Testimonials: []Testimonial{{ID: "a"}, {ID: "b"}},
	}

	require.NotNil(t, w.Testimonial("b"))
	assert.Equal(t, "b", w.Testimonial("b").ID)
	assert.Nil(t, w.Testimonial("missing"))
}

func TestFallbackEmbedHTML(t *testing.T) {
	html := FallbackEmbedHTML("https://x.com/jack/status/20")

	assert.True(t, strings.HasPrefix(html, `<blockquote class="twitter-tweet" data-theme="light">`))
	assert.Contains(t, html, `<a href="https://x.com/jack/status/20"></a>`)
	// Deterministic: same input, same markup.
	assert.Equal(t, html, FallbackEmbedHTML("https://x.com/jack/status/20"))
}

func TestAvatarURL_Deterministic(t *testing.T) {
	first := AvatarURL("jack")

	assert.Equal(t, first, AvatarURL("jack"))
	assert.Contains(t, first, "jack")
}

func TestAvatarURL_ProviderMapping(t *testing.T) {
	tests := []struct {
		author string
		prefix string
	}{
		// These authors hash onto the three distinct providers.
		{"jack", "https://api.dicebear.com/7.x/avataaars/svg?seed=jack"},
		{"ab", "https://i.pravatar.cc/80?u=ab"},
		{"b", "https://images.unsplash.com/photo-"},
	}
	for _, tt := range tests {
		t.Run(tt.author, func(t *testing.T) {
			url := AvatarURL(tt.author)

			assert.True(t, strings.HasPrefix(url, tt.prefix), url)
		})
	}
}
