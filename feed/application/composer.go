package application

// Format is one of the comment composer's formatting helpers.
type Format string

const (
	FormatBold   Format = "bold"
	FormatItalic Format = "italic"
	FormatLink   Format = "link"
)

var formatSnippets = map[Format]string{
	FormatBold:   "**bold text**",
	FormatItalic: "*italic text*",
	FormatLink:   "[link text](https://)",
}

// ParseFormat maps a helper name from the composer form to a Format.
func ParseFormat(name string) (Format, bool) {
	f := Format(name)
	_, ok := formatSnippets[f]
	return f, ok
}

// ApplyFormat appends the markdown snippet of f to buffer.
// Unknown formats leave the buffer untouched.
func ApplyFormat(buffer string, f Format) string {
	return buffer + formatSnippets[f]
}
