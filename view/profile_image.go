package view

// PlaceholderIcon is the icon shown when a user has no image.
const PlaceholderIcon = "account"

// ProfileImage is the avatar of a user.
type ProfileImage struct {
	Src   string `json:"src,omitempty"`
	Alt   string `json:"alt,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Class string `json:"class,omitempty"`
}

// NewProfileImage renders src, or the placeholder icon when src is empty.
func NewProfileImage(src string, class string) ProfileImage {
	img := ProfileImage{Class: "relative h-12 w-12 overflow-hidden rounded"}
	if class != "" {
		img.Class += " " + class
	}
	if src == "" {
		img.Icon = PlaceholderIcon
		return img
	}
	img.Src = src
	img.Alt = "profile image"
	return img
}

// Placeholder reports whether the image falls back to the icon.
func (i ProfileImage) Placeholder() bool {
	return i.Src == ""
}
