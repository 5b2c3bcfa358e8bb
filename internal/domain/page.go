package domain

type FetchStatus string

const (
	FetchOK      FetchStatus = "ok"
	FetchBlocked FetchStatus = "blocked"
	FetchFailed  FetchStatus = "failed"
)

// RawPage is a fetched page reduced to visible text. Text is empty unless
// Status is FetchOK.
type RawPage struct {
	URL    string
	Text   string
	Status FetchStatus
	Reason string
}

func (p RawPage) OK() bool { return p.Status == FetchOK }
