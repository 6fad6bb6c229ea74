package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestFirstText(t *testing.T) {
	doc := parse(t, `
		<ul>
			<li> <b>Gym</b>  Alpha
			</li>
			<li>Gym Beta</li>
		</ul>
	`)

	text, ok := FirstText(doc.Find("li"))
	require.True(t, ok)
	require.Equal(t, "Gym  Alpha", text)

	_, ok = FirstText(doc.Find("table"))
	require.False(t, ok)
}

func TestTexts(t *testing.T) {
	doc := parse(t, `<div><a> Yoga </a><a>Boxe<!-- comment --></a><a></a></div>`)
	require.Equal(t, []string{"Yoga", "Boxe", ""}, Texts(doc.Find("a")))
	require.Equal(t, []string{}, Texts(doc.Find("span")))
}
