package httpapi

type RunStatus struct {
	RunID     string `json:"run_id"`
	Query     string `json:"query"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastLeads int    `json:"last_leads"`
	Running   bool   `json:"running"`
}

type startRunReq struct {
	Query       string `json:"query"`
	TargetCount int    `json:"target_count"`
}
