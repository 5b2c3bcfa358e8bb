package events

// Payloads carried in Event.Data.

type Attempt struct {
	Attempt int    `json:"attempt"`
	Query   string `json:"query"`
}

type Evaluation struct {
	Attempt   int     `json:"attempt"`
	Query     string  `json:"query"`
	Results   int     `json:"results"`
	Relevant  int     `json:"relevant"`
	Aggregate float64 `json:"aggregate"`
	Threshold float64 `json:"threshold"`
}

type AttemptError struct {
	Attempt int    `json:"attempt"`
	Query   string `json:"query"`
	Error   string `json:"error"`
}

type Refinement struct {
	Attempt int    `json:"attempt"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type Candidate struct {
	URL    string `json:"url"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type Lead struct {
	URL         string `json:"url"`
	CompanyName string `json:"company_name,omitempty"`
	Fields      int    `json:"fields"`
	Count       int    `json:"count"`
}

type Finished struct {
	Query    string `json:"query"`
	Leads    int    `json:"leads"`
	Attempts int    `json:"attempts"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
}
