package render

import "strings"

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	tr, release, err := renderers.borrow(opts)
	if err != nil {
		return "", err
	}
	defer release()

	return tr.Render(content)
}

// Reply renders an assistant reply, falling back to the raw text when the
// renderer fails. Surrounding blank lines added by glamour are trimmed.
func Reply(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
