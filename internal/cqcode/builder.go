package cqcode

// Code types understood by message renderers.
const (
	TypeImage  = "image"
	TypeVideo  = "video"
	TypeShare  = "share"
	TypeAt     = "at"
	TypeReply  = "reply"
	TypeRecord = "record"
)

const (
	mentionAll   = "[CQ:at,qq=all]"
	base64Scheme = "base64://"
)

// optional maps an empty string to nil so the field is left out.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Text escapes free text for embedding between codes.
func Text(s string) string {
	return Escape(s, false)
}

// Image returns an image code. variant selects a rendering style such as
// "flash"; empty means none.
func Image(file, variant string) string {
	return New(TypeImage).
		Set("file", file).
		Set("type", optional(variant)).
		String()
}

// Base64Image returns an image code carrying the image data inline.
func Base64Image(data, variant string) string {
	return Image(base64Scheme+data, variant)
}

func Video(file, cover string) string {
	return New(TypeVideo).
		Set("file", file).
		Set("cover", optional(cover)).
		String()
}

// Share returns a link share card.
func Share(url, title, content, image string) string {
	return New(TypeShare).
		Set("url", url).
		Set("title", title).
		Set("content", optional(content)).
		Set("image", optional(image)).
		String()
}

// Mention returns a code mentioning a single user.
func Mention(userID string) string {
	return New(TypeAt).Set("qq", userID).String()
}

// MentionAll returns the code mentioning every member of a group.
func MentionAll() string {
	return mentionAll
}

func Reply(messageID string) string {
	return New(TypeReply).Set("id", messageID).String()
}

// Voice returns a voice message code.
func Voice(file string) string {
	return New(TypeRecord).Set("file", file).String()
}
