package camara

import (
	"bytes"
	"strings"

	"raspador-backend/lib/htmlutil"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// what an event description reads as when the detail page has no
// content box at all
const blankDescription = " em branco"

var controlChars = strings.NewReplacer("\n", "", "\t", "", "\r", "")

// parseDescription extracts the free-text description from an event
// detail page. The page nests duplicate ".caixaCOnteudo" containers, so
// the last match is the authoritative one; inline styles and the
// "see also" box are noise and get removed before the markup is
// flattened into multi-line text.
func parseDescription(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return blankDescription
	}

	boxes := doc.Find(".caixaCOnteudo")
	if boxes.Length() == 0 {
		return blankDescription
	}
	box := boxes.Last()
	box.Find("style, .vejaTambem").Remove()

	markup, err := goquery.OuterHtml(box)
	if err != nil {
		return blankDescription
	}
	markup = controlChars.Replace(markup)

	text, err := md.NewConverter("", true, nil).ConvertString(markup)
	if err != nil {
		// fall back to the raw node text rather than losing the event
		text = htmlutil.GetText(box.Nodes[0])
	}
	return htmlutil.TrimLines(text)
}
