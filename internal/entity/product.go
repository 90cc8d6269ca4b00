package entity

import (
	"errors"
	"net/url"
	"strings"
)

const (
	DefaultProductName = "Stop madspild (MÆT)"
	DefaultProductURL  = "https://maetpets.com/produkt/stop-madspil/"
)

var ErrInvalidProductURL = errors.New("product url must be an absolute http(s) url")

// Product is the single page being watched.
type Product struct {
	Name string
	URL  string
}

func NewProduct(name, rawURL string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProductName
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		rawURL = DefaultProductURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidProductURL
	}

	return &Product{
		Name: name,
		URL:  rawURL,
	}, nil
}
