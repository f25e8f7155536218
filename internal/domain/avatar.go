package domain

import "fmt"

// AvatarURL returns a deterministic placeholder avatar URL for an author. The
// hash picks one of three placeholder services; the same author always
// resolves to the same image.
func AvatarURL(author string) string {
	h := hashString(author)
	switch h % 3 {
	case 0:
		return fmt.Sprintf("https://i.pravatar.cc/80?u=%s", author)
	case 1:
		return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", author)
	default:
		// Unsplash photo ids are derived from the hash rather than the name.
		return fmt.Sprintf("https://images.unsplash.com/photo-%d?w=80&h=80&fit=crop&crop=face", 1400000000000+int64(h%1000))
	}
}

// hashString is a 32-bit string hash; only stability matters, not dispersion.
func hashString(s string) uint32 {
	var h int32
	for _, c := range s {
		h = h*31 + c
	}

	if h < 0 {
		h = -h
	}

	return uint32(h)
}
