package clipper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Item is a product read from a web page, before it gets a category.
type Item struct {
	Name     string
	Quantity int
}

// Clipper fetches web pages and reads shopping items from their lists.
type Clipper struct {
	httpClient *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper() *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ingredientSelectors find lists that hold products on recipe and shopping
// pages. When none match, every list entry on the page is used.
const ingredientSelectors = `[class*="ingredient"] li, [id*="ingredient"] li, [class*="shopping"] li, [itemprop="recipeIngredient"]`

// leadingQuantity matches "2 x Apples", "2x Apples" and "3 Apples".
var leadingQuantity = regexp.MustCompile(`^(\d+)(?:\s*[xX×])?\s+(.+)$`)

// Clip fetches url and returns the items listed on it, in page order.
func (c *Clipper) Clip(ctx context.Context, url string) ([]Item, error) {
	doc, err := c.fetchAndClean(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	entries := doc.Find(ingredientSelectors)
	if entries.Length() == 0 {
		entries = doc.Find("body li")
	}

	var items []Item
	entries.Each(func(i int, s *goquery.Selection) {
		if item, ok := ParseItem(s.Text()); ok {
			items = append(items, item)
		}
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("no list entries found at %s", url)
	}
	return items, nil
}

func (c *Clipper) fetchAndClean(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, nav, header, footer, iframe, ads, .ads, #ads, .comments, #comments").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	return doc, nil
}

// ParseItem reads one list entry. A leading number is the quantity; entries
// without one count once.
func ParseItem(text string) (Item, bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Item{}, false
	}

	if m := leadingQuantity.FindStringSubmatch(text); m != nil {
		qty, err := strconv.Atoi(m[1])
		name := strings.TrimSpace(m[2])
		if err == nil && qty > 0 && name != "" {
			return Item{Name: name, Quantity: qty}, true
		}
	}
	return Item{Name: text, Quantity: 1}, true
}
