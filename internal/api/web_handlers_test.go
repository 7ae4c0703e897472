package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/share"
)

// parsePage parses an HTML response body.
func parsePage(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

// findAll returns every element matching match in document order.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(key string) func(*html.Node) bool {
	return func(n *html.Node) bool { return attr(n, key) != "" }
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func TestHomePage(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	doc := parsePage(t, w.Body.String())
	cards := findAll(doc, hasAttr("data-occasion"))
	require.Len(t, cards, 4)
	assert.Equal(t, "birthday", attr(cards[0], "data-occasion"))
	assert.Equal(t, "festival", attr(cards[3], "data-occasion"))

	links := findAll(doc, func(n *html.Node) bool { return n.Data == "a" && attr(n, "href") == "/create" })
	assert.Len(t, links, 1)
}

func TestCreatePage(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/create", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CacheNoStore, w.Header().Get("Cache-Control"))

	doc := parsePage(t, w.Body.String())
	shells := findAll(doc, hasAttr("data-session"))
	require.Len(t, shells, 1)

	sessionID := attr(shells[0], "data-session")
	assert.Regexp(t, `^wiz-`, sessionID)
	assert.Equal(t, "/api/v1/wizard/"+sessionID, attr(shells[0], "data-api"))
	assert.Contains(t, text(shells[0]), "Step 1 of 6")

	// The page opened a live session.
	st := ts.wizardCall(t, http.MethodGet, "/api/v1/wizard/"+sessionID, nil)
	assert.Equal(t, "occasion", st.Step)
}

func TestWishPage(t *testing.T) {
	ts := setupTestServer(t)
	slug := ts.seedWish(t, "Amir")

	w := ts.do(t, http.MethodGet, "/wishes/"+slug, nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc := parsePage(t, w.Body.String())
	articles := findAll(doc, hasAttr("data-slug"))
	require.Len(t, articles, 1)
	assert.Equal(t, slug, attr(articles[0], "data-slug"))
	assert.Contains(t, attr(articles[0], "style"), "#ffffff")

	headings := findAll(articles[0], byTag("h1"))
	require.Len(t, headings, 1)
	assert.Equal(t, "Amir", text(headings[0]))

	imgs := findAll(articles[0], byTag("img"))
	require.Len(t, imgs, 1)
	assert.True(t, strings.HasPrefix(attr(imgs[0], "src"), "/photos/"))

	assert.Empty(t, findAll(doc, byClass("carousel-controls")), "a single photo has no carousel")

	qr := findAll(doc, func(n *html.Node) bool { return n.Data == "img" && attr(n, "class") == "qr" })
	require.Len(t, qr, 1)
	assert.Equal(t, testPublicURL+"/wishes/"+slug+"/qr.png", attr(qr[0], "src"))
}

func TestWishPage_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/wishes/nobody-birthday-0000", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	doc := parsePage(t, w.Body.String())
	sections := findAll(doc, hasAttr("data-status"))
	require.Len(t, sections, 1)
	assert.Equal(t, "not_found", attr(sections[0], "data-status"))
	assert.Contains(t, text(sections[0]), "Wish not found")

	back := findAll(sections[0], byTag("a"))
	require.Len(t, back, 1)
	assert.Equal(t, "/", attr(back[0], "href"))
}

func TestWishPage_EscapesContent(t *testing.T) {
	ts := setupTestServer(t)
	slug := ts.seedWish(t, "<script>alert(1)</script>")

	w := ts.do(t, http.MethodGet, "/wishes/"+slug, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<script>alert(1)</script>")

	doc := parsePage(t, w.Body.String())
	assert.Empty(t, findAll(doc, byTag("script")))
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return slices.Contains(strings.Fields(attr(n, "class")), class)
	}
}

// currentPhoto returns the data-index of the photo marked current.
func currentPhoto(t *testing.T, doc *html.Node) string {
	t.Helper()
	current := findAll(doc, func(n *html.Node) bool { return n.Data == "img" && attr(n, "class") == "current" })
	require.Len(t, current, 1)
	return attr(current[0], "data-index")
}

func TestWishPage_Carousel(t *testing.T) {
	ts := setupTestServer(t)
	slug := ts.seedWishWithPhotos(t, "Amir", 3, domain.LayoutSlider)

	w := ts.do(t, http.MethodGet, "/wishes/"+slug, nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parsePage(t, w.Body.String())

	assert.Equal(t, "0", currentPhoto(t, doc))
	nav := findAll(doc, byClass("carousel-controls"))
	require.Len(t, nav, 1)

	indicators := findAll(nav[0], byClass("indicator"))
	require.Len(t, indicators, 3)
	for i, ind := range indicators {
		assert.Equal(t, "?photo="+strconv.Itoa(i)+"#photos", attr(ind, "href"))
	}
	assert.Equal(t, "true", attr(indicators[0], "aria-current"))
	assert.Empty(t, attr(indicators[1], "aria-current"))

	// Previous wraps to the last photo.
	prev := findAll(nav[0], byClass("prev"))
	require.Len(t, prev, 1)
	assert.Equal(t, "?photo=2#photos", attr(prev[0], "href"))

	t.Run("indicator selects a photo", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/wishes/"+slug+"?photo=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		doc := parsePage(t, w.Body.String())

		assert.Equal(t, "2", currentPhoto(t, doc))
		next := findAll(doc, byClass("next"))
		require.Len(t, next, 1)
		assert.Equal(t, "?photo=0#photos", attr(next[0], "href"))
	})

	t.Run("out of range keeps the first photo", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/wishes/"+slug+"?photo=7", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", currentPhoto(t, parsePage(t, w.Body.String())))
	})
}

func TestWishPage_CopyLink(t *testing.T) {
	ts := setupTestServer(t)
	slug := ts.seedWish(t, "Amir")

	w := ts.do(t, http.MethodGet, "/wishes/"+slug, nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parsePage(t, w.Body.String())

	forms := findAll(doc, byClass("copy"))
	require.Len(t, forms, 1)
	assert.Equal(t, "/wishes/"+slug+"/copy", attr(forms[0], "action"))
	links := findAll(forms[0], byTag("input"))
	require.Len(t, links, 1)
	assert.Equal(t, testPublicURL+"/wishes/"+slug, attr(links[0], "value"))
	assert.Empty(t, findAll(doc, byClass("copied")))

	w = ts.do(t, http.MethodPost, "/wishes/"+slug+"/copy", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/wishes/"+slug+"?copied="), location)

	// Browsers do not send the fragment.
	page, _, _ := strings.Cut(location, "#")
	w = ts.do(t, http.MethodGet, page, nil)
	require.Equal(t, http.StatusOK, w.Code)
	acks := findAll(parsePage(t, w.Body.String()), byClass("copied"))
	require.Len(t, acks, 1)
	assert.Equal(t, share.InstagramInstruction, text(acks[0]))

	// The acknowledgement is gone once the window has passed.
	stale := time.Now().Add(-share.CopiedFor - time.Second).UnixMilli()
	w = ts.do(t, http.MethodGet, "/wishes/"+slug+"?copied="+strconv.FormatInt(stale, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, findAll(parsePage(t, w.Body.String()), byClass("copied")))
}
