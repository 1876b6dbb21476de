package dto

// SerperNewsRequest is the POST body for the Serper news search API.
type SerperNewsRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

// SerperNewsResponse is the relevant slice of the Serper response.
type SerperNewsResponse struct {
	News []SerperNewsItem `json:"news"`
}

// SerperNewsItem is one news result.
type SerperNewsItem struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	ImageURL string `json:"imageUrl"`
}
