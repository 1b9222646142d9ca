package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>  Sample   Page </title>
  <meta name="description" content=" A page used in tests ">
  <meta property="og:title" content="Sample">
  <style>body { color: red }</style>
</head>
<body>
  <div id="app">
    <ul class="menu main">
      <li><a href="/a">First</a></li>
      <li><a href="/b">Second</a></li>
    </ul>
    <p>Hello <b>world</b><script>var x = 1;</script></p>
  </div>
</body>
</html>`

func TestTitleAndMeta(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Sample Page", Title(doc))

	desc, ok := Meta(doc, "description")
	assert.True(t, ok)
	assert.Equal(t, "A page used in tests", desc)

	og, ok := Meta(doc, "og:title")
	assert.True(t, ok)
	assert.Equal(t, "Sample", og)

	_, ok = Meta(doc, "keywords")
	assert.False(t, ok)
}

func TestTextSkipsScripts(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	p := First(doc, "p")
	require.NotNil(t, p)
	assert.Equal(t, "Hello world", Text(p))
}

func TestFindAllAndAttr(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	links := FindAll(doc, "a")
	require.Len(t, links, 2)
	assert.Equal(t, "/a", Attr(links[0], "href"))
	assert.Equal(t, "", Attr(links[0], "title"))
	assert.True(t, HasAttr(links[1], "HREF"))

	root := First(doc, "html")
	lang, ok := LookupAttr(root, "lang")
	assert.True(t, ok)
	assert.Equal(t, "en", lang)

	assert.Nil(t, First(doc, "table"))
	assert.NotEmpty(t, Elements(doc))
}

func TestSelector(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	links := FindAll(doc, "a")
	assert.Equal(t, "div#app > ul.menu.main > li:nth-of-type(2) > a", Selector(links[1]))

	p := First(doc, "p")
	assert.Equal(t, "div#app > p", Selector(p))
}

func TestWalkCanPrune(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	var seen []string
	Walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			seen = append(seen, n.Data)
		}
		return n.Data != "head"
	})
	assert.Contains(t, seen, "head")
	assert.NotContains(t, seen, "title")
	assert.Contains(t, seen, "body")
}
