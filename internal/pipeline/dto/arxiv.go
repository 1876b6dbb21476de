package dto

import "encoding/xml"

// ArxivFeed is the Atom envelope returned by the arXiv query API.
type ArxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []ArxivEntry `xml:"entry"`
}

// ArxivEntry is one paper in the Atom feed.
type ArxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Updated    string          `xml:"updated"`
	Authors    []ArxivAuthor   `xml:"author"`
	Categories []ArxivCategory `xml:"category"`
	Links      []ArxivLink     `xml:"link"`
}

// ArxivAuthor is a paper author.
type ArxivAuthor struct {
	Name string `xml:"name"`
}

// ArxivCategory is a subject classification tag.
type ArxivCategory struct {
	Term string `xml:"term,attr"`
}

// ArxivLink is an alternate or related link on an entry.
type ArxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}
