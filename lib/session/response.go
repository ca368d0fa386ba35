package session

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Response wraps a completed exchange. Redirects are never followed,
// so a 3xx response surfaces here with its Location header intact.
type Response struct {
	raw *resty.Response
	url *url.URL
}

// URL returns the resolved url the request was sent to.
func (r *Response) URL() *url.URL {
	return r.url
}

func (r *Response) StatusCode() int {
	return r.raw.StatusCode()
}

func (r *Response) Body() []byte {
	return r.raw.Body()
}

// Location returns the Location header of a redirect response.
func (r *Response) Location() (string, bool) {
	loc := r.raw.Header().Get("Location")
	return loc, loc != ""
}

// HTML parses the response body as a document.
func (r *Response) HTML() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.raw.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", r.url, err)
	}
	return doc, nil
}
