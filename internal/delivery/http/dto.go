package http

// EnumerateRequest carries two reagent pools in reagent-file line format
type EnumerateRequest struct {
	Acids  []string `json:"acids" binding:"required"`
	Amines []string `json:"amines" binding:"required"`
}

// EnumerateResponse lists results in acid-major, amine-minor order.
// Keep field names stable; add new fields only with ",omitempty".
type EnumerateResponse struct {
	Pairs    int               `json:"pairs"`
	Accepted []AcceptedProduct `json:"accepted"`
	Rejected []RejectedPair    `json:"rejected"`
}

// AcceptedProduct is one coupled product and its combined name
type AcceptedProduct struct {
	Product string `json:"product"`
	Name    string `json:"name"`
}

// RejectedPair describes a pair that did not give exactly one candidate
type RejectedPair struct {
	Name       string   `json:"name"`
	Acid       string   `json:"acid"`  // canonical
	Amine      string   `json:"amine"` // canonical
	Count      int      `json:"count"`
	Candidates []string `json:"candidates"`
	Error      string   `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
}
