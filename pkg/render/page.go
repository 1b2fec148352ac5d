package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/streamstore/pkg/vdom"
)

// PageData describes a full HTML document.
type PageData struct {
	Title string
	Body  *vdom.VNode

	// Script is inlined at the end of <body> when non-empty. It must be
	// trusted content.
	Script string
}

// RenderPage writes a complete HTML document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if _, err := fmt.Fprintf(w,
		"<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body><div id=\"app\">",
		escapeHTML(page.Title)); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "</div>"); err != nil {
		return err
	}
	if page.Script != "" {
		if _, err := fmt.Fprintf(w, "<script>%s</script>", page.Script); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body></html>\n")
	return err
}
